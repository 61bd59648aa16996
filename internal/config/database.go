package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Database struct {
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password_file"`
	Host         string `mapstructure:"host"`
	Port         uint16 `mapstructure:"port"`
	DBName       string `mapstructure:"db_name"`
	SSLMode      string `mapstructure:"ssl_mode"`
}

func (c Database) loadPassword() (string, error) {
	if c.Password != "" || c.PasswordFile == "" {
		return c.Password, nil
	}
	data, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c Database) URL() (string, error) {
	if c.User == "" {
		return "", fmt.Errorf("no postgres user set")
	}
	if c.DBName == "" {
		return "", fmt.Errorf("no postgres db name set")
	}
	password, err := c.loadPassword()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		url.QueryEscape(password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	), nil
}
