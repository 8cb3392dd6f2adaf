package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stark/internal/diagfmt"
	"stark/internal/wellknown"
)

var attributesCmd = &cobra.Command{
	Use:   "attributes [flags]",
	Short: "List the well-known attributes and their recognized constructors",
	Args:  cobra.NoArgs,
	RunE:  runAttributes,
}

func init() {
	attributesCmd.Flags().String("lookup", "", "resolve a namespace-qualified attribute name instead of listing")
}

func runAttributes(cmd *cobra.Command, _ []string) error {
	lookup, err := cmd.Flags().GetString("lookup")
	if err != nil {
		return fmt.Errorf("failed to get lookup flag: %w", err)
	}
	reg := wellknown.Default()
	out := cmd.OutOrStdout()

	if lookup != "" {
		dot := strings.LastIndexByte(lookup, '.')
		if dot <= 0 {
			return fmt.Errorf("%q is not namespace-qualified", lookup)
		}
		id, ok := reg.LookupAttribute(lookup[:dot], lookup[dot+1:])
		if !ok {
			fmt.Fprintf(out, "%s is not a well-known attribute\n", lookup)
			return nil
		}
		desc, _ := reg.Attribute(id)
		for _, sig := range attributeSignatures(desc) {
			fmt.Fprintf(out, "%s%s\n", desc.FullName(), sig)
		}
		return nil
	}

	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	t := diagfmt.NewTable("ID", "ATTRIBUTE", "CONSTRUCTORS").WithColor(colored)
	for id := wellknown.AttrAttributeUsage; id < wellknown.AttributeCount; id++ {
		desc, ok := reg.Attribute(id)
		if !ok {
			continue
		}
		name := desc.FullName()
		if desc.MatchIgnoringCase {
			name += " (any case)"
		}
		t.Row(strconv.Itoa(int(id)), name, strings.Join(attributeSignatures(desc), " "))
	}
	return t.Render(out)
}

// attributeSignatures renders every recognized constructor as a parameter
// list.
func attributeSignatures(desc wellknown.AttributeDescription) []string {
	out := make([]string, len(desc.Signatures))
	for i := range desc.Signatures {
		params := desc.Params(i)
		parts := make([]string, len(params))
		for j, p := range params {
			parts[j] = sigParamName(p)
		}
		out[i] = "(" + strings.Join(parts, ", ") + ")"
	}
	return out
}

var sigCodeNames = map[wellknown.SignatureTypeCode]string{
	wellknown.SigBoolean: "bool",
	wellknown.SigRune:    "rune",
	wellknown.SigInt8:    "i8",
	wellknown.SigUInt8:   "u8",
	wellknown.SigInt16:   "i16",
	wellknown.SigUInt16:  "u16",
	wellknown.SigInt32:   "i32",
	wellknown.SigUInt32:  "u32",
	wellknown.SigInt64:   "i64",
	wellknown.SigUInt64:  "u64",
	wellknown.SigFloat32: "f32",
	wellknown.SigFloat64: "f64",
	wellknown.SigString:  "string",
	wellknown.SigObject:  "object",
}

func sigParamName(p wellknown.SigParam) string {
	switch p.Code {
	case wellknown.SigTypeHandle:
		info := p.Target.Info()
		return info.Namespace + "." + info.Name
	case wellknown.SigSZArray:
		return sigCodeName(p.Elem) + "[]"
	}
	return sigCodeName(p.Code)
}

func sigCodeName(c wellknown.SignatureTypeCode) string {
	if name, ok := sigCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("sig(0x%02X)", uint8(c))
}
