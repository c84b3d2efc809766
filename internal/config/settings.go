package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings are app-level values that rarely change between runs: SMTP
// delivery, SSH session credentials, and the admin recipient list. They come
// from the environment (DIRSENTRY_* variables) and an optional config file,
// never from the task list.
type Settings struct {
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}

	SSH struct {
		User       string
		Port       int
		Password   string
		KeyFile    string
		KnownHosts string
		// Insecure disables host key verification.
		Insecure bool
	}

	// AdminMailTo receives the admin failure notification when a run cannot
	// start. Comma/semicolon separated.
	AdminMailTo string
}

// LoadSettings reads settings from the environment and, when file is
// non-empty, a YAML/TOML config file. Environment variables win over file
// values; both win over defaults.
func LoadSettings(file string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("DIRSENTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("smtp.port", 587)
	v.SetDefault("ssh.port", 22)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings file: %w", err)
		}
	}

	s := &Settings{}
	s.SMTP.Host = v.GetString("smtp.host")
	s.SMTP.Port = v.GetInt("smtp.port")
	s.SMTP.Username = v.GetString("smtp.username")
	s.SMTP.Password = v.GetString("smtp.password")
	s.SMTP.From = v.GetString("smtp.from")

	s.SSH.User = v.GetString("ssh.user")
	s.SSH.Port = v.GetInt("ssh.port")
	s.SSH.Password = v.GetString("ssh.password")
	s.SSH.KeyFile = v.GetString("ssh.key_file")
	s.SSH.KnownHosts = v.GetString("ssh.known_hosts")
	s.SSH.Insecure = v.GetBool("ssh.insecure")

	s.AdminMailTo = v.GetString("admin_mailto")
	return s, nil
}

// AdminRecipients splits AdminMailTo into individual addresses.
func (s *Settings) AdminRecipients() []string {
	fields := strings.FieldsFunc(s.AdminMailTo, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
