package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/propjson/catalog"
	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/serialization"
	"github.com/spf13/cobra"
)

func newEncodeArrayCmd() *cobra.Command {
	encodeArray := &cobra.Command{
		Use:   "encode-array [value]...",
		Short: "Encode the arguments as a JSON array.",
		Long: "`encode-array 1 true null text` writes [1,true,null,\"text\"]. " +
			"Arguments that parse as numbers, booleans or null keep that " +
			"type; everything else is a string.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pretty := boolSetting(cmd, "pretty", envPretty)
			return runEncodeArray(cmd.OutOrStdout(), args, pretty)
		},
	}

	encodeArray.Flags().Bool("pretty", false,
		"Indent the JSON output, env "+envPretty)

	return encodeArray
}

func runEncodeArray(w io.Writer, args []string, pretty bool) error {
	registry, err := catalog.NewRegistry()
	if err != nil {
		return err
	}

	codec := serialization.MakeBuilder().
		WithRegistry(registry).
		WithLogger(logger).
		WithPrettyPrint(pretty).
		Build()

	elems := make([]property.Value, 0, len(args))
	for _, arg := range args {
		elems = append(elems, argValue(arg))
	}

	text, err := codec.MarshalArray(elems)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(text))

	return err
}

func argValue(arg string) property.Value {
	if arg == "null" {
		return property.NullValue()
	}

	if arg == "true" || arg == "false" {
		return property.BoolValue(arg == "true")
	}

	if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return property.IntValue(i)
	}

	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return property.FloatValue(f)
	}

	return property.StringValue(arg)
}
