// Copyright 2024 Juca Crispim <juca@poraodojuca.net>

// This file is part of cgikit.

// cgikit is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// cgikit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with cgikit. If not, see <http://www.gnu.org/licenses/>.

// Package cmd implements the cgikit command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jucacrispim/cgikit/internal/config"
	"github.com/jucacrispim/cgikit/internal/logging"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

type app struct {
	v          *viper.Viper
	configPath string
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "cgikit",
		Short: "cgikit: run CGI scripts",
		Long: "cgikit serves a directory of CGI scripts over HTTP, runs a single script " +
			"from the terminal and helps with the Basic credentials the scripts receive.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "TOML config file")
	flags.String("cgi-dir", "", "directory holding the CGI scripts (default ./cgi-bin)")
	flags.String("log-level", "", "log level: debug, info, warn or error (default info)")
	flags.Duration("timeout", 0, "maximum run time of a script (default 30s)")
	_ = a.v.BindPFlag(config.CGIDirKey, flags.Lookup("cgi-dir"))
	_ = a.v.BindPFlag(config.LogLevelKey, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.TimeoutKey, flags.Lookup("timeout"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(a),
		newRunCmd(a),
		newAuthCmd(),
		newConfigCmd(a),
	)

	return rootCmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup() (config.Config, error) {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	a.logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
