package i18n_test

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suidrift/suidrift/internal/pkg/common"
	"github.com/suidrift/suidrift/internal/pkg/i18n"
)

func newService(t *testing.T, dataDir string) (*i18n.I18nService, *common.DatabaseService) {
	t.Helper()

	i := do.New()

	do.ProvideNamedValue(i, "data-dir", dataDir)
	do.Provide(i, common.NewDatabaseService)
	do.Provide(i, i18n.NewI18nService)

	service, err := do.Invoke[*i18n.I18nService](i)
	require.NoError(t, err)

	return service, do.MustInvoke[*common.DatabaseService](i)
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stake 1.5 SUI",
		i18n.Interpolate("stake {stake} SUI", i18n.Params{"stake": "1.5"}))

	assert.Equal(t, "game 7 by 0xabc",
		i18n.Interpolate("game {id} by {creator}", i18n.Params{"id": 7, "creator": "0xabc"}))

	// Missing parameters stay literal.
	assert.Equal(t, "game {id}", i18n.Interpolate("game {id}", i18n.Params{"other": 1}))
	assert.Equal(t, "game {id}", i18n.Interpolate("game {id}", nil))
}

func TestTranslateFallback(t *testing.T) {
	t.Parallel()

	// Known key in both locales.
	assert.Equal(t, "Game not found", i18n.Translate(i18n.English, "gameNotFound", nil))
	assert.Equal(t, "未找到游戏", i18n.Translate(i18n.Chinese, "gameNotFound", nil))

	// Unknown key falls through to the key itself.
	assert.Equal(t, "noSuchKey", i18n.Translate(i18n.Chinese, "noSuchKey", nil))
}

func TestLanguagePersistence(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()

	service, db := newService(t, dataDir)
	require.NoError(t, service.SetLanguage(i18n.Chinese))
	require.NoError(t, db.Shutdown())

	reopened, db := newService(t, dataDir)
	defer db.Shutdown()

	assert.Equal(t, i18n.Chinese, reopened.Language())
	assert.Equal(t, "质押金额无效", reopened.T("invalidStakeAmount", nil))
}

func TestSetLanguageRejectsUnknown(t *testing.T) {
	t.Parallel()

	service, db := newService(t, t.TempDir())
	defer db.Shutdown()

	before := service.Language()

	assert.Error(t, service.SetLanguage(i18n.Language("fr")))
	assert.Equal(t, before, service.Language())
}
