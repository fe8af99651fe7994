// Package i18n holds the active locale and the lookup-and-interpolate
// function behind every user-visible message. The locale is an explicit
// value on the service, initialized once from durable storage and written
// back on every change.
package i18n

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/samber/do/v2"

	"github.com/suidrift/suidrift/internal/pkg/common"
)

type Params map[string]any

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

type I18nService struct {
	DatabaseService *common.DatabaseService

	language Language
}

func NewI18nService(i do.Injector) (*I18nService, error) {
	databaseService := do.MustInvoke[*common.DatabaseService](i)

	stored := databaseService.GetSetting(common.SettingLanguage, "")

	language := Language(stored)
	if !language.Valid() {
		language = detectLanguage()
	}

	return &I18nService{
		DatabaseService: databaseService,

		language: language,
	}, nil
}

// detectLanguage falls back to the process environment when nothing is
// stored, the CLI's counterpart of the browser-language default.
func detectLanguage() Language {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := strings.ToLower(os.Getenv(key))
		if strings.HasPrefix(value, "zh") {
			return Chinese
		}

		if len(value) > 0 {
			break
		}
	}

	return English
}

func (s *I18nService) Language() Language {
	return s.language
}

// SetLanguage switches the active locale and persists it.
func (s *I18nService) SetLanguage(language Language) error {
	if !language.Valid() {
		return fmt.Errorf("failed to set language: unsupported language %q", language)
	}

	s.language = language

	return s.DatabaseService.PutSetting(common.SettingLanguage, string(language))
}

// T looks key up in the active locale, falling back to English and finally
// to the key itself.
func (s *I18nService) T(key string, params Params) string {
	return Translate(s.language, key, params)
}

// Translate is the pure lookup-and-interpolate unit. Placeholders take the
// form {name}; a placeholder with no matching parameter is left literal.
func Translate(language Language, key string, params Params) string {
	template, ok := messages[language][key]
	if !ok {
		template, ok = messages[English][key]
	}

	if !ok {
		template = key
	}

	return Interpolate(template, params)
}

func Interpolate(template string, params Params) string {
	if params == nil {
		return template
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		token := match[1 : len(match)-1]

		value, ok := params[token]
		if !ok {
			return match
		}

		return fmt.Sprintf("%v", value)
	})
}
