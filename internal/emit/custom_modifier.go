package emit

import (
	"stark/internal/metadata"
	"stark/internal/symbols"
)

// CustomModifierAdapter presents a symbol-level custom modifier to the
// signature writer.
type CustomModifierAdapter struct {
	mod symbols.CustomModifier
}

func NewCustomModifierAdapter(mod symbols.CustomModifier) CustomModifierAdapter {
	return CustomModifierAdapter{mod: mod}
}

// AdaptCustomModifiers wraps every modifier of mods, keeping their order.
func AdaptCustomModifiers(mods []symbols.CustomModifier) []CustomModifierAdapter {
	if len(mods) == 0 {
		return nil
	}
	out := make([]CustomModifierAdapter, len(mods))
	for i, mod := range mods {
		out[i] = NewCustomModifierAdapter(mod)
	}
	return out
}

// IsOptional distinguishes modopt from modreq.
func (a CustomModifierAdapter) IsOptional() bool { return a.mod.IsOptional }

// GetModifier translates the modifier type through the module of ectx.
// Diagnostics go to ectx.Diagnostics at ectx.Node.
func (a CustomModifierAdapter) GetModifier(ectx EmitContext) metadata.EntityHandle {
	var t symbols.TypeSymbol
	if a.mod.Modifier != nil {
		t = a.mod.Modifier
	}
	return ectx.Module.Translate(t, ectx.Node, ectx.Diagnostics)
}
