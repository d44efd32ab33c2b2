// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package cmd contains the planctl commands.
package cmd

import (
	"io"

	"github.com/apache/beam/planner/internal/errors"
	"github.com/apache/beam/planner/pkg/planner/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootFlags struct {
	cfgFile   string
	debug     bool
	logFormat string
}

// Root returns a fresh planctl command tree. Each tree carries its own
// configuration, so several may run in one process.
func Root() *cobra.Command {
	f := &rootFlags{}
	v := viper.New()
	root := &cobra.Command{
		Use:          "planctl",
		Short:        "planctl plans pipelines for streaming and batch runners",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd, f, v)
	}
	root.PersistentFlags().StringVar(&f.cfgFile, "config", "", "Config file with option values (yaml, json or toml).")
	root.PersistentFlags().BoolVarP(&f.debug, "debug", "d", false, "Turn on debug logging.")
	root.PersistentFlags().StringVar(&f.logFormat, "log_format", "text", "Log format: text or json.")

	root.AddCommand(planCmd(v), runnersCmd(), versionCmd())
	return root
}

// initConfig reads the config file, if any, binds the flags of the running
// command and installs the logger.
func initConfig(cmd *cobra.Command, f *rootFlags, v *viper.Viper) error {
	if f.cfgFile != "" {
		v.SetConfigFile(f.cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config file %v", f.cfgFile)
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "binding flags")
	}

	l, err := newLogger(cmd.ErrOrStderr(), f.debug, f.logFormat)
	if err != nil {
		return err
	}
	log.SetLogger(&log.Logrus{Logger: l})
	return nil
}

func newLogger(w io.Writer, debug bool, format string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)
	switch format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("invalid log format %q, want text or json", format)
	}
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l, nil
}
