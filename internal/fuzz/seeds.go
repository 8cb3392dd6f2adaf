package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

var exprSeeds = []string{
	"1",
	"a:i32 + b:i64 * 2",
	"(a:i32 + b:i32) * 2",
	"-x:i8",
	"!f:bool || x:i32 < 3",
	"n:i32++",
	"s:string + o:core.Option<i32>",
	"m:Map<string, i32>? == null",
	"geo.Vector.Scale(v:geo.Vector, 2.5e1)",
	`"a\"b" + 1`,
}

var typeSeeds = []string{
	"i32",
	"core.Option<i32>",
	"Map<string, List<i32[]>>?",
	"u8**",
	"geo.Vector[]?",
}

// manifestFiles walks testdata for manifests.
func manifestFiles() [][]byte {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return nil
	}
	var out [][]byte
	// проходим по дереву testdata, добавляем все *.toml файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".toml") {
			return nil
		}
		// #nosec G304 -- path comes from walking the repository testdata
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		out = append(out, clampSeed(src))
		return nil
	})
	return out
}

func addManifestSeeds(f *testing.F) {
	for _, src := range manifestFiles() {
		f.Add(src)
	}
	// хотя бы один минимальный пример на случай пустого testdata
	f.Add([]byte{})
	f.Add([]byte("[package]\nname = \"x\"\n"))
}

// addExprSeeds adds the built-in expressions and every method body found
// in testdata manifests.
func addExprSeeds(f *testing.F) {
	for _, s := range exprSeeds {
		f.Add(s)
	}
	for _, src := range manifestFiles() {
		for _, line := range bytes.Split(src, []byte{'\n'}) {
			rest, ok := bytes.CutPrefix(bytes.TrimSpace(line), []byte("body = "))
			if !ok {
				continue
			}
			if body, err := strconv.Unquote(string(rest)); err == nil {
				f.Add(body)
			}
		}
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
