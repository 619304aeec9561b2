package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/propjson/catalog"
	"github.com/sarchlab/propjson/diagnostics"
	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/serialization"
	"github.com/spf13/cobra"
	"github.com/syifan/goseth"
	"go.uber.org/zap"
)

type decodeOptions struct {
	typeName      string
	format        string
	pretty        bool
	dump          bool
	depth         int
	diagnosticsDB string
}

func newDecodeCmd() *cobra.Command {
	decode := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a document and write it back in normalized form.",
		Long: "`decode --type Owner owner.json` decodes the document into an " +
			"Owner and writes what the Owner serializes to. Reads standard " +
			"input when no file is given. Diagnostics are summarized on " +
			"standard error.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := decodeOptions{}
			opts.typeName, _ = cmd.Flags().GetString("type")
			opts.format, _ = cmd.Flags().GetString("format")
			opts.dump, _ = cmd.Flags().GetBool("dump")
			opts.depth, _ = cmd.Flags().GetInt("depth")
			opts.pretty = boolSetting(cmd, "pretty", envPretty)
			opts.diagnosticsDB = stringSetting(cmd, "diagnostics-db",
				envDiagnosticsDB)

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				in = f
			}

			return runDecode(in, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	decode.Flags().String("type", "", "Name of the registered root type")
	decode.Flags().String("format", "json", "Output format, json or msgpack")
	decode.Flags().Bool("pretty", false,
		"Indent the JSON output, env "+envPretty)
	decode.Flags().Bool("dump", false,
		"Dump the decoded Go value instead of re-encoding it")
	decode.Flags().Int("depth", 2, "Maximum depth of --dump")
	decode.Flags().String("diagnostics-db", "",
		"SQLite file to record diagnostics in, env "+envDiagnosticsDB)
	_ = decode.MarkFlagRequired("type")

	return decode
}

func runDecode(in io.Reader, out, errOut io.Writer, opts decodeOptions) error {
	if opts.format != "json" && opts.format != "msgpack" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	registry, err := catalog.NewRegistry()
	if err != nil {
		return err
	}

	collector := diagnostics.NewCollector()
	builder := serialization.MakeBuilder().
		WithRegistry(registry).
		WithLogger(logger).
		WithPrettyPrint(opts.pretty).
		WithHook(collector)

	if opts.diagnosticsDB != "" {
		recorder, err := diagnostics.NewSQLiteRecorder(opts.diagnosticsDB,
			diagnostics.WithRecorderLogger(logger))
		if err != nil {
			return err
		}

		defer func() {
			if err := recorder.Close(); err != nil {
				logger.Error("close diagnostics recorder", zap.Error(err))
			}
		}()

		logger.Info("recording diagnostics",
			zap.String("db", opts.diagnosticsDB),
			zap.String("session", recorder.Session()))

		builder = builder.WithHook(recorder)
	}

	codec := builder.Build()

	obj, err := codec.Decode(in, opts.typeName)
	if err != nil {
		return err
	}

	switch {
	case opts.dump:
		err = dump(out, obj, opts.depth)
	case opts.format == "msgpack":
		err = jsonvalue.EncodeMsgpack(out, codec.Serializer().Serialize(obj))
	default:
		err = codec.Encode(out, obj)
	}

	if err != nil {
		return err
	}

	return summarize(errOut, collector)
}

func dump(w io.Writer, obj property.Object, depth int) error {
	var root any = obj
	if u, ok := obj.(property.Unwrapper); ok {
		root = u.Unwrap()
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(root)
	serializer.SetMaxDepth(depth)

	return serializer.Serialize(w)
}

func summarize(w io.Writer, collector *diagnostics.Collector) error {
	if collector.Len() == 0 {
		return nil
	}

	counts := map[serialization.DiagnosticKind]int{}
	var kinds []serialization.DiagnosticKind

	for _, d := range collector.Diagnostics() {
		if counts[d.Kind] == 0 {
			kinds = append(kinds, d.Kind)
		}

		counts[d.Kind]++
	}

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}

	_, err := fmt.Fprintf(w, "%d diagnostics: %s\n",
		collector.Len(), strings.Join(parts, " "))

	return err
}
