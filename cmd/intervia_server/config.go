package main

import (
	"log/slog"

	"github.com/spf13/viper"
)

type AppConfig struct {
	v *viper.Viper
}

func NewAppConfig() *AppConfig {
	c := &AppConfig{v: viper.New()}

	setDefaults(c.v)

	return c
}

func (c *AppConfig) Load(filename string) bool {
	if filename == "" {
		return false
	}

	c.v.SetConfigFile(filename)

	if err := c.v.ReadInConfig(); err != nil {
		slog.Info("error loading config: " + err.Error())
		return false
	}

	return true
}

func (c *AppConfig) LoadEnv(prefix string) {
	c.v.SetEnvPrefix(prefix)
	c.v.AutomaticEnv()
}

func (c *AppConfig) Set(key string, v any) {
	c.v.Set(key, v)
}

func (c *AppConfig) Bool(key string) bool {
	return c.v.GetBool(key)
}

func (c *AppConfig) String(key string) string {
	return c.v.GetString(key)
}

func (c *AppConfig) ApiAddr() string {
	return c.v.GetString("api_addr")
}

func (c *AppConfig) DB() string {
	return c.v.GetString("db")
}

func (c *AppConfig) UsersFile() string {
	return c.v.GetString("users_file")
}

func (c *AppConfig) Debug() bool {
	return c.v.GetBool("debug")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_addr", ":8080")
	v.SetDefault("db", "intervia.sqlite")
	v.SetDefault("users_file", "users.yml")
	v.SetDefault("debug", false)
}
