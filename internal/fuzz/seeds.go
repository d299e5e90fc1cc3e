package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 16 << 10
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, seed := range inlineSeeds {
		f.Add([]byte(seed))
	}
}

// addTestdataSeeds adds the decoder's testdata documents.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "astio", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml", ".json":
		default:
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil || len(src) > maxSeedBytes {
			return nil
		}
		f.Add(src)
		return nil
	})
}

var inlineSeeds = []string{
	"modules: []\n",
	`{"modules": []}`,
	"modules:\n  - name: M\n    decls:\n      - {kind: interface, name: I, signatures: [{name: Run, result: void}]}\n      - {kind: class, name: C, implements: [I], members: [{name: Run, result: void}]}\n",
	"modules:\n  - name: M\n    decls:\n      - kind: class\n        name: A\n        fields: [{name: b, type: B}]\n      - kind: class\n        name: B\n        fields: [{name: a, type: A}]\n",
	"modules:\n  - name: M\n    decls:\n      - kind: class\n        name: G\n        members:\n          - name: Loop\n            type_param: T\n            result: void\n            params: [{name: v, type: T}]\n            body:\n              - {kind: expr, expr: {kind: call, name: Loop, args: [{kind: ident, name: v}]}}\n",
	"modules:\n  - name: A\n    use: [{name: B}]\n    decls:\n      - {kind: function, name: F, result: void, body: [{kind: expr, expr: {kind: call, name: G}}]}\n  - name: B\n    use: [{name: A, pub: true}]\n    decls:\n      - {kind: function, name: G, type_param: T, result: T, params: [{name: v, type: T}], body: [{kind: return, value: {kind: ident, name: v}}]}\n",
}
