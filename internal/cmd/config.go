package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Alia5/padrelay/internal/configpaths"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for a specific command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"run"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

type template struct {
	base string
	typ  reflect.Type
}

var templates = map[string]template{
	"run": {base: "relay", typ: reflect.TypeFor[Run]()},
}

// Run writes every flag of the command with its default value, keyed the
// way the config loaders look flags up.
func (c *ConfigInit) Run() error {
	tmpl, ok := templates[c.Command]
	if !ok {
		return fmt.Errorf("unknown command %q", c.Command)
	}
	ext, marshal, err := templateEncoder(c.Format)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = tmpl.base + "." + ext
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s exists; use --force to overwrite", dest)
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := marshal(flagTemplate(tmpl.typ))
	if err != nil {
		return fmt.Errorf("encode %s template: %w", ext, err)
	}
	return os.WriteFile(dest, data, 0o644)
}

func templateEncoder(format string) (string, func(any) ([]byte, error), error) {
	switch strings.ToLower(format) {
	case "json":
		return "json", func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }, nil
	case "yaml", "yml":
		return "yaml", yaml.Marshal, nil
	case "toml":
		return "toml", toml.Marshal, nil
	}
	return "", nil, fmt.Errorf("unsupported format: %s", format)
}

// flagTemplate maps the flags of t to their defaults. Embedded structs
// with a prefix become nested tables.
func flagTemplate(t reflect.Type) map[string]any {
	out := map[string]any{}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("embed"); ok {
			sub := flagTemplate(f.Type)
			if name := strings.TrimSuffix(f.Tag.Get("prefix"), "."); name != "" {
				out[name] = sub
			} else {
				maps.Copy(out, sub)
			}
			continue
		}
		if v, ok := defaultValue(f.Type, f.Tag.Get("default")); ok {
			out[configKey(f)] = v
		}
	}
	return out
}

// configKey returns the key the kong config loaders resolve for a field:
// its flag name with dashes replaced by underscores.
func configKey(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return strings.ReplaceAll(name, "-", "_")
	}
	r := []rune(f.Name)
	var b strings.Builder
	for i, c := range r {
		if unicode.IsUpper(c) && i > 0 {
			prevLower := unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1])
			nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
			if prevLower || (unicode.IsUpper(r[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return b.String()
}

// defaultValue parses a default tag for the field type. Unparsable or
// missing defaults yield the zero value.
func defaultValue(t reflect.Type, def string) (any, bool) {
	if t == reflect.TypeFor[time.Duration]() {
		if def == "" {
			def = "0s"
		}
		return def, true
	}
	switch t.Kind() {
	case reflect.String:
		return def, true
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n, true
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f, true
	}
	return nil, false
}
