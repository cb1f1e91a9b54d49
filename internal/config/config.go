package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen   string  `koanf:"listen"`
	Currency string  `koanf:"currency"`
	Storage  Storage `koanf:"storage"`
	Sheets   Sheets  `koanf:"sheets"`
}

// Storage selects the blob store backend. "sqlite" is the default local
// single-file setup; "postgres" is for deployments with a database server.
type Storage struct {
	Driver   string   `koanf:"driver"`
	Path     string   `koanf:"path"`
	Postgres Postgres `koanf:"postgres"`
}

type Postgres struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	Name string `koanf:"name"`
}

// Sheets configures the optional Google Sheets backup target.
type Sheets struct {
	Enabled         bool   `koanf:"enabled"`
	SpreadsheetId   string `koanf:"spreadsheetid"`
	SheetName       string `koanf:"sheetname"`
	CredentialsFile string `koanf:"credentialsfile"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen:   ":8391",
		Currency: "USD",
		Storage: Storage{
			Driver: "sqlite",
			Path:   "./data/pennybook.db",
			Postgres: Postgres{
				Host: "localhost",
				Port: 5432,
				User: "pennybook",
				Pass: "",
				Name: "pennybook",
			},
		},
		Sheets: Sheets{
			SheetName: "Expenses",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "PENNYBOOK_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "PENNYBOOK_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
