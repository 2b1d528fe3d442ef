package cli

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/harrybrwn/xdg"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/harrybrwn/pojogen/java"
	"github.com/harrybrwn/pojogen/mapping"
	"github.com/harrybrwn/pojogen/pojo"
	"github.com/harrybrwn/pojogen/schema"
	"github.com/harrybrwn/pojogen/stack"
)

type Flags struct {
	SchemaFiles  []string
	Dirs         []string
	MappingFiles []string
	OutDir       string
	Package      string
	EnumStyle    string
	UseStdout    bool
	Force        bool
	LogLevel     string
	Debug        bool

	Fetch    bool
	NoCache  bool
	CacheDir string
	Timeout  time.Duration
}

func NewPojoGenCmd(template *cobra.Command, flags *Flags) *cobra.Command {
	if template == nil {
		template = new(cobra.Command)
	}
	if len(template.Use) == 0 {
		template.Use = "gen [type uri...]"
	}
	if len(template.Short) == 0 {
		template.Short = "Generate Java classes from a set of json schemas"
	}
	if len(template.Long) == 0 {
		template.Long = "Generate Java classes from a set of json schemas.\n\n" +
			"Each argument is a type uri such as \"http://example.com/person.json#\". " +
			"Without arguments the root of every schema document is generated."
	}
	if len(flags.CacheDir) == 0 {
		flags.CacheDir = xdg.Cache("pojogen")
	}
	if flags.Timeout == 0 {
		flags.Timeout = 30 * time.Second
	}
	if len(flags.EnumStyle) == 0 {
		flags.EnumStyle = string(pojo.FeatureEnumStyle.Default)
	}
	c := *template
	c.RunE = func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd.ErrOrStderr(), flags)
		if err != nil {
			return err
		}
		for _, d := range flags.Dirs {
			extraFiles, err := findSchemaFiles(d)
			if err != nil {
				return err
			}
			flags.SchemaFiles = append(flags.SchemaFiles, extraFiles...)
		}
		store := schema.NewStore()
		for _, f := range flags.SchemaFiles {
			base, err := store.AddFile(f)
			if err != nil {
				return err
			}
			logger.Debug("loaded schema", "file", f, "uri", base)
		}

		var loader schema.Loader = store
		if flags.Fetch {
			fetcher := schema.NewFetcher(store, &http.Client{Timeout: flags.Timeout}, flags.CacheDir).
				WithContext(cmd.Context())
			fetcher.SetLogger(logger)
			if flags.NoCache {
				fetcher.Disable()
			} else if err = fetcher.Clean(); err != nil {
				logger.Warn("failed to clean schema cache", "error", err)
			}
			loader = fetcher
		}

		registry := mapping.NewRegistry()
		registry.SetLogger(logger)
		for _, f := range flags.MappingFiles {
			ms, err := mapping.LoadFile(f)
			if err != nil {
				return err
			}
			if err = registry.AddMappings(ms); err != nil {
				return err
			}
		}
		mapping.SetFeature(registry, mapping.FeatureDefaultPackageName, flags.Package)
		mapping.SetFeature(registry, pojo.FeatureEnumStyle, java.Kind(flags.EnumStyle))

		types := args
		if len(types) == 0 {
			for _, base := range store.Documents() {
				types = append(types, base+"#")
			}
		}
		if len(types) == 0 {
			return errors.New("no schemas given, use --schema or --dir")
		}

		var (
			memory *pojo.MemorySink
			sink   pojo.Sink
		)
		if flags.UseStdout {
			memory = pojo.NewMemorySink()
			sink = memory
		} else {
			sink = &pojo.DirSink{Dir: flags.OutDir, Force: flags.Force}
		}
		generator := pojo.New(registry, loader, sink, pojo.WithLogger(logger))
		for _, uri := range types {
			if _, err = generator.Generate(uri); err != nil {
				return err
			}
		}
		if memory != nil {
			return writeUnits(cmd.OutOrStdout(), memory.Units())
		}
		return nil
	}
	c.Flags().StringArrayVarP(&flags.SchemaFiles, "schema", "s", flags.SchemaFiles, "schema file")
	c.Flags().StringArrayVarP(&flags.Dirs, "dir", "d", flags.Dirs, "schema directory")
	c.Flags().StringArrayVarP(&flags.MappingFiles, "mapping", "m", flags.MappingFiles, "mapping file")
	c.Flags().StringVarP(&flags.OutDir, "out", "o", flags.OutDir, "output directory")
	c.Flags().StringVarP(&flags.Package, "package", "p", flags.Package, "package for types without a mapping")
	c.Flags().StringVar(&flags.EnumStyle, "enum-style", flags.EnumStyle, "generate string enums as an \"enum\" or a \"class\"")
	c.Flags().BoolVar(&flags.UseStdout, "stdout", flags.UseStdout, "write generated code to stdout")
	c.Flags().BoolVarP(&flags.Force, "force", "f", flags.Force, "force the generator to overwrite files")
	c.Flags().BoolVar(&flags.Fetch, "fetch", flags.Fetch, "download schemas referenced by http urls")
	c.Flags().BoolVar(&flags.NoCache, "no-cache", flags.NoCache, "do not cache downloaded schemas")
	c.Flags().StringVar(&flags.CacheDir, "cache-dir", flags.CacheDir, "directory for downloaded schemas")
	c.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "timeout for schema downloads")
	c.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level (debug, info, warn, error)")
	c.Flags().BoolVar(&flags.Debug, "debug", flags.Debug, "enable debug logging")
	return &c
}

func newLogger(w io.Writer, flags *Flags) (*slog.Logger, error) {
	var level slog.Level
	if len(flags.LogLevel) > 0 {
		if err := level.UnmarshalText([]byte(flags.LogLevel)); err != nil {
			return nil, errors.Wrap(err, "invalid log level")
		}
	}
	if flags.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func writeUnits(w io.Writer, units []*pojo.Unit) error {
	for i, u := range units {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.Copy(w, &u.Buffer); err != nil {
			return err
		}
	}
	return nil
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func findSchemaFiles(base string) ([]string, error) {
	files := make([]string, 0)
	for info, err := range walk(base) {
		if err != nil {
			return nil, err
		}
		mode := info.Info.Mode()
		if mode&fs.ModeDir != 0 ||
			mode&fs.ModeSymlink != 0 ||
			!isSchemaFile(info.Path) {
			continue
		}
		files = append(files, info.Path)
	}
	return files, nil
}

type walkData struct {
	Path string
	Info fs.FileInfo
}

// walk visits root depth first with the entries of each directory in sorted
// order.
func walk(root string) func(yield func(*walkData, error) bool) {
	return func(yield func(*walkData, error) bool) {
		var s stack.Stack[*walkData]
		info, err := os.Stat(root)
		if err != nil {
			yield(&walkData{Path: root}, err)
			return
		}
		s.Push(&walkData{Path: root, Info: info})
		for !s.Empty() {
			w, _ := s.Pop()
			if w.Info.Mode()&fs.ModeDir == 0 {
				if !yield(w, nil) {
					return
				}
				continue
			}
			names, err := readDirNames(w.Path)
			if !yield(w, err) {
				return
			}
			if err != nil {
				continue
			}
			for _, name := range slices.Backward(names) {
				filename := filepath.Join(w.Path, name)
				fileInfo, err := os.Lstat(filename)
				if err != nil {
					if !yield(&walkData{Path: filename}, err) {
						return
					}
					continue
				}
				s.Push(&walkData{Path: filename, Info: fileInfo})
			}
		}
	}
}

func readDirNames(dirname string) ([]string, error) {
	f, err := os.Open(dirname)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	names, err := f.Readdirnames(-1)
	f.Close()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	slices.Sort(names)
	return names, nil
}
