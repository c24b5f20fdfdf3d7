//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"livephoto-audio/cmd"
	"livephoto-audio/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedConfigContext = &configContext{output: &bytes.Buffer{}}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConfigContext.tempDir != "" {
			os.RemoveAll(SharedConfigContext.tempDir)
		}
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a default configuration file$`, aDefaultConfigurationFile)
	ctx.Step(`^I run config get "([^"]*)"$`, iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, iRunConfigSetTo)
	ctx.Step(`^the command output should be "([^"]*)"$`, theCommandOutputShouldBe)
	ctx.Step(`^the saved config should have "([^"]*)" set to "([^"]*)"$`, theSavedConfigShouldHaveSetTo)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, theConfigCommandShouldFailWith)
}

func aDefaultConfigurationFile() error {
	c := SharedConfigContext
	tempDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		return err
	}
	c.tempDir = tempDir
	c.configPath = filepath.Join(tempDir, "config.yaml")
	return config.Save(config.Default(), c.configPath)
}

func manager() (*config.ConfigManager, error) {
	c := SharedConfigContext
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	return config.NewConfigManager(cfg, c.configPath), nil
}

func iRunConfigGet(key string) error {
	mgr, err := manager()
	if err != nil {
		return err
	}
	SharedConfigContext.err = cmd.RunConfigGet(mgr, key, SharedConfigContext.output)
	return nil
}

func iRunConfigSetTo(key, value string) error {
	mgr, err := manager()
	if err != nil {
		return err
	}
	SharedConfigContext.err = cmd.RunConfigSet(mgr, key, value, SharedConfigContext.output)
	return nil
}

func theCommandOutputShouldBe(expected string) error {
	c := SharedConfigContext
	if c.err != nil {
		return fmt.Errorf("command failed: %w", c.err)
	}
	if got := strings.TrimSpace(c.output.String()); got != expected {
		return fmt.Errorf("expected output %q, got %q", expected, got)
	}
	return nil
}

func theSavedConfigShouldHaveSetTo(key, expected string) error {
	return configValueShouldBe(SharedConfigContext.configPath, key, expected)
}

func theConfigCommandShouldFailWith(msg string) error {
	err := SharedConfigContext.err
	if err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, err.Error())
	}
	return nil
}
