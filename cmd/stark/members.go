package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stark/internal/diagfmt"
	"stark/internal/wellknown"
)

var membersCmd = &cobra.Command{
	Use:   "members [flags]",
	Short: "List the special members the compiler binds against",
	Long: `List the well-known member descriptors. The table can be read from an
encoded descriptor blob instead of the built-in one, and the built-in table
can be exported as such a blob`,
	Args: cobra.NoArgs,
	RunE: runMembers,
}

func init() {
	membersCmd.Flags().String("type", "", "only members declared on this type (keyword or core name)")
	membersCmd.Flags().String("from-blob", "", "decode descriptors from this blob file")
	membersCmd.Flags().String("export-blob", "", "write the built-in descriptor blob to this file and exit")
}

func runMembers(cmd *cobra.Command, _ []string) error {
	typeName, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	fromBlob, err := cmd.Flags().GetString("from-blob")
	if err != nil {
		return fmt.Errorf("failed to get from-blob flag: %w", err)
	}
	exportBlob, err := cmd.Flags().GetString("export-blob")
	if err != nil {
		return fmt.Errorf("failed to get export-blob flag: %w", err)
	}

	if exportBlob != "" {
		blob := wellknown.MemberBlob()
		if err := os.WriteFile(exportBlob, blob, 0o600); err != nil {
			return fmt.Errorf("failed to write %q: %w", exportBlob, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d descriptors, %d bytes)\n",
			exportBlob, wellknown.SpecialMemberCount, len(blob))
		return nil
	}

	reg := wellknown.Default()
	if fromBlob != "" {
		data, err := os.ReadFile(fromBlob)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", fromBlob, err)
		}
		if reg, err = wellknown.NewRegistryFromBlob(data); err != nil {
			return fmt.Errorf("%s: %w", fromBlob, err)
		}
	}

	ids, err := selectMembers(reg, typeName)
	if err != nil {
		return err
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	t := diagfmt.NewTable("ID", "KIND", "MEMBER").WithColor(colored)
	for _, id := range ids {
		d, ok := reg.Descriptor(id)
		if !ok {
			continue
		}
		t.Row(strconv.Itoa(int(id)), memberKind(d.Flags), d.String())
	}
	return t.Render(cmd.OutOrStdout())
}

// selectMembers lists every member, or those declared on typeName.
func selectMembers(reg *wellknown.Registry, typeName string) ([]wellknown.SpecialMember, error) {
	if typeName != "" {
		st, ok := wellknown.SpecialTypeByKeyword(typeName)
		if !ok {
			st, ok = wellknown.SpecialTypeByMetadataName(typeName)
		}
		if !ok {
			return nil, fmt.Errorf("unknown special type %q", typeName)
		}
		return reg.MembersOf(st), nil
	}
	ids := make([]wellknown.SpecialMember, 0, wellknown.SpecialMemberCount)
	for id := range wellknown.SpecialMemberCount {
		ids = append(ids, id)
	}
	return ids, nil
}

func memberKind(f wellknown.MemberFlags) string {
	var kind string
	switch f.Kind() {
	case wellknown.MemberField:
		kind = "field"
	case wellknown.MemberConstructor:
		kind = "ctor"
	case wellknown.MemberPropertyGet:
		kind = "getter"
	case wellknown.MemberProperty:
		kind = "property"
	default:
		kind = "method"
	}
	var mods []string
	if f.IsStatic() {
		mods = append(mods, "static")
	}
	if f.IsVirtual() {
		mods = append(mods, "virtual")
	}
	if len(mods) == 0 {
		return kind
	}
	return strings.Join(mods, " ") + " " + kind
}
