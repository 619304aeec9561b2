package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/propjson/catalog"
	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/serialization"
	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types [TypeName]",
		Short: "List the registered types.",
		Long: "`types` lists the registered types and converter keys. " +
			"`types [TypeName]` lists the properties of one type.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := catalog.NewRegistry()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return listTypes(cmd.OutOrStdout(), registry)
			}

			desc, ok := registry.Descriptor(args[0])
			if !ok {
				return fmt.Errorf("type %s is not registered", args[0])
			}

			return describeType(cmd.OutOrStdout(), desc)
		},
	}
}

func listTypes(w io.Writer, registry *serialization.Registry) error {
	for _, name := range registry.TypeNames() {
		desc, _ := registry.Descriptor(name)

		_, err := fmt.Fprintf(w, "%s\t%s\t%d properties\n",
			name, desc.Semantics, len(desc.Properties))
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "converters: %s\n",
		strings.Join(registry.StringifierKeys(), ", "))

	return err
}

func describeType(w io.Writer, desc property.TypeDescriptor) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", desc.Name, desc.Semantics); err != nil {
		return err
	}

	for _, p := range desc.Properties {
		var flags []string

		if !p.Readable {
			flags = append(flags, "write-only")
		}

		if !p.Writable {
			flags = append(flags, "read-only")
		}

		if p.Converter != "" {
			flags = append(flags, "converter="+p.Converter)
		}

		if p.Identity {
			flags = append(flags, "identity")
		}

		line := fmt.Sprintf("  %s: %s", p.Name, p.Type)
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ", ") + "]"
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
