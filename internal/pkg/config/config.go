package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ContractConfig pins the client to one deployment of the game package. The
// fully-qualified names derived from it are a wire contract with the chain.
type ContractConfig struct {
	PackageID     string `env:"SUIDRIFT_PACKAGE_ID" envDefault:"0xeecad5c95376a7c48a4c527901e78696008ff15b388797601468da7938dd47a3"`
	GameConfigID  string `env:"SUIDRIFT_GAME_CONFIG_ID" envDefault:"0x069b6b5d7aec5dbb7e6dce9f0358876eca0ccb5568194ba623ad3f55fc704ad5"`
	ClockObjectID string `env:"SUIDRIFT_CLOCK_OBJECT_ID" envDefault:"0x6"`
	ModuleName    string `env:"SUIDRIFT_MODULE_NAME" envDefault:"game"`
}

func Load() (*ContractConfig, error) {
	cfg, err := env.ParseAs[ContractConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract config: %w", err)
	}

	return &cfg, nil
}

// Target returns the fully-qualified entry point for a contract function.
func (c *ContractConfig) Target(function string) string {
	return fmt.Sprintf("%s::%s::%s", c.PackageID, c.ModuleName, function)
}

// EventType returns the fully-qualified name of an emitted event struct.
func (c *ContractConfig) EventType(event string) string {
	return fmt.Sprintf("%s::%s::%s", c.PackageID, c.ModuleName, event)
}

// ObjectType returns the fully-qualified name of an on-chain object struct.
func (c *ContractConfig) ObjectType(object string) string {
	return fmt.Sprintf("%s::%s::%s", c.PackageID, c.ModuleName, object)
}
