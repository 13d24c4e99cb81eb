// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"errors"
	"os"

	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/luxfi/amm/config"
)

const (
	ConfigFileKey     = "config-file"
	DBDirKey          = "db-dir"
	HTTPHostKey       = "http-host"
	HTTPPortKey       = "http-port"
	AdminKey          = "admin"
	FactoryAccountKey = "factory-account"
)

var errMissingAdmin = errors.New("--" + AdminKey + " is required")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(ConfigFileKey, "", "JSON file overriding the default pool and server configuration")
	flags.String(DBDirKey, "", "Directory of the database. State is kept in memory when empty")
	flags.String(HTTPHostKey, "", "Address the HTTP server listens on. Overrides the config file")
	flags.Uint16(HTTPPortKey, 0, "Port the HTTP server listens on. Overrides the config file")
	flags.String(AdminKey, "", "Address allowed to use the factory admin methods (required)")
	flags.String(FactoryAccountKey, "", "Address pools authorize for privileged calls")
}

type Config struct {
	Params         config.Config
	DBDir          string
	Admin          ids.ShortID
	FactoryAccount ids.ShortID
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	configFile, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return nil, err
	}
	var configBytes []byte
	if configFile != "" {
		configBytes, err = os.ReadFile(configFile)
		if err != nil {
			return nil, err
		}
	}
	params, err := config.Parse(configBytes)
	if err != nil {
		return nil, err
	}

	if flags.Changed(HTTPHostKey) {
		params.HTTPHost, err = flags.GetString(HTTPHostKey)
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed(HTTPPortKey) {
		params.HTTPPort, err = flags.GetUint16(HTTPPortKey)
		if err != nil {
			return nil, err
		}
	}

	dbDir, err := flags.GetString(DBDirKey)
	if err != nil {
		return nil, err
	}

	adminStr, err := flags.GetString(AdminKey)
	if err != nil {
		return nil, err
	}
	if adminStr == "" {
		return nil, errMissingAdmin
	}
	admin, err := ids.ShortFromString(adminStr)
	if err != nil {
		return nil, err
	}

	factoryAccount := ids.ShortEmpty
	accountStr, err := flags.GetString(FactoryAccountKey)
	if err != nil {
		return nil, err
	}
	if accountStr != "" {
		factoryAccount, err = ids.ShortFromString(accountStr)
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		Params:         params,
		DBDir:          dbDir,
		Admin:          admin,
		FactoryAccount: factoryAccount,
	}, nil
}
