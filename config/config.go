// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

// Package config generates flags from a configuration struct and fills it from a file, flags and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "./config.yml"

// Manager manages configuration.
type Manager struct {
	flags      *pflag.FlagSet
	target     any
	configFile string
	nameTag    string
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// Option configures a Manager.
type Option func(*Manager)

// WithNameTag sets the struct tag that holds flag names. Default is `name`.
func WithNameTag(tag string) Option {
	return func(m *Manager) {
		if tag != "" {
			m.nameTag = tag
		}
	}
}

// WithEnvPrefix enables environment overrides. A flag `rotate.max-size` is read from `<PREFIX>_ROTATE_MAX_SIZE`.
func WithEnvPrefix(prefix string) Option {
	return func(m *Manager) {
		m.envPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_"))
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(m *Manager) {
		if lookup != nil {
			m.lookupEnv = lookup
		}
	}
}

// New returns a new Manager.
// Out must be a pointer, else this function panics.
func New(out any, opts ...Option) (*Manager, error) {
	if out == nil || reflect.TypeOf(out).Kind() != reflect.Pointer {
		panic("out is not a pointer")
	}

	m := &Manager{
		target:    out,
		flags:     pflag.NewFlagSet("config", pflag.ExitOnError),
		nameTag:   "name",
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(m)
	}
	// Add the config file flag by default.
	m.flags.StringVarP(
		&m.configFile,
		"config",
		"c",
		defaultConfigFile,
		"location of the configuration file",
	)
	err := m.genFlagSet()
	return m, err
}

// ParseConfiguration parses the configuration.
// Order of precedence; config file < flag < environment.
// The config file is optional unless it was set explicitly.
func (m Manager) ParseConfiguration(cmd *cobra.Command) error {
	// Save explicitly set flag values before loading the yaml.
	var setFlags []func() error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name != "config" {
			setFlags = append(setFlags, saveFlag(cmd.Flags(), f))
		}
	})

	// Get values from the config file.
	raw, err := os.ReadFile(m.configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, m.target); err != nil {
			return fmt.Errorf("could not parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
	default:
		return fmt.Errorf("could not read config file: %w", err)
	}

	// Override explicitly set flags from the args.
	for _, restore := range setFlags {
		if err := restore(); err != nil {
			return err
		}
	}

	return m.applyEnv(cmd.Flags())
}

// saveFlag returns a function that sets the flag back to its current value.
func saveFlag(flags *pflag.FlagSet, f *pflag.Flag) func() error {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		saved := sv.GetSlice()
		return func() error {
			if err := sv.Replace(saved); err != nil {
				return fmt.Errorf("could not set flag %s: %w", f.Name, err)
			}
			return nil
		}
	}
	value := f.Value.String()
	if f.Value.Type() == "stringToString" {
		// String() wraps the pairs in brackets, which Set does not accept.
		value = strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
	}
	return func() error {
		if value == "" && f.Value.Type() == "stringToString" {
			return nil
		}
		if err := flags.Set(f.Name, value); err != nil {
			return fmt.Errorf("could not set flag %s: %w", f.Name, err)
		}
		return nil
	}
}

func (m Manager) applyEnv(flags *pflag.FlagSet) error {
	if m.envPrefix == "" {
		return nil
	}
	var errs []error
	m.flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		value, ok := m.lookupEnv(EnvName(m.envPrefix, f.Name))
		if !ok {
			return
		}
		if err := flags.Set(f.Name, value); err != nil {
			errs = append(errs, fmt.Errorf("could not set flag %s from environment: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// EnvName returns the environment variable for a flag name.
func EnvName(prefix, name string) string {
	name = strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// FlagSet returns the manager's flagset.
func (m Manager) FlagSet() *pflag.FlagSet {
	return m.flags
}

// ConfigFile returns the location of the configuration file.
func (m Manager) ConfigFile() string {
	return m.configFile
}

// genFlagSet reads the configuration and uses reflection to generate a corresponding flagset.
// Flags are bound directly to the fields of the target.
func (m Manager) genFlagSet() error {
	v := reflect.ValueOf(m.target).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", v.Kind())
	}
	return processStruct(m.nameTag, m.flags, v, "")
}

// processStruct recursively adds a flag for each tagged field.
func processStruct(nameTag string, flags *pflag.FlagSet, v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !fieldValue.CanSet() {
			continue
		}
		name := field.Tag.Get(nameTag)
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		short := field.Tag.Get("short")
		usage := field.Tag.Get("description")

		if fieldValue.Kind() == reflect.Struct {
			if err := processStruct(nameTag, flags, fieldValue, name); err != nil {
				return err
			}
			continue
		}

		switch p := fieldValue.Addr().Interface().(type) {
		case *string:
			flags.StringVarP(p, name, short, *p, usage)
		case *bool:
			flags.BoolVarP(p, name, short, *p, usage)
		case *int:
			flags.IntVarP(p, name, short, *p, usage)
		case *int8:
			flags.Int8VarP(p, name, short, *p, usage)
		case *int16:
			flags.Int16VarP(p, name, short, *p, usage)
		case *int32:
			flags.Int32VarP(p, name, short, *p, usage)
		case *int64:
			flags.Int64VarP(p, name, short, *p, usage)
		case *uint:
			flags.UintVarP(p, name, short, *p, usage)
		case *uint8:
			flags.Uint8VarP(p, name, short, *p, usage)
		case *uint16:
			flags.Uint16VarP(p, name, short, *p, usage)
		case *uint32:
			flags.Uint32VarP(p, name, short, *p, usage)
		case *uint64:
			flags.Uint64VarP(p, name, short, *p, usage)
		case *float32:
			flags.Float32VarP(p, name, short, *p, usage)
		case *float64:
			flags.Float64VarP(p, name, short, *p, usage)
		case *time.Duration:
			flags.DurationVarP(p, name, short, *p, usage)
		case *[]string:
			flags.StringSliceVarP(p, name, short, append([]string(nil), *p...), usage)
		case *[]int:
			flags.IntSliceVarP(p, name, short, append([]int(nil), *p...), usage)
		case *map[string]string:
			defaultValue := make(map[string]string, len(*p))
			for k, val := range *p {
				defaultValue[k] = val
			}
			flags.StringToStringVarP(p, name, short, defaultValue, usage)
		default:
			return fmt.Errorf("unsupported field type %s for field %s", fieldValue.Type(), field.Name)
		}
	}

	return nil
}
