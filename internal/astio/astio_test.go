package astio

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cstar/internal/ast"
	"cstar/internal/source"
)

func TestLoadPlayerYAML(t *testing.T) {
	prog, err := Load(filepath.Join("testdata", "player.yaml"))
	require.NoError(t, err)
	require.NoError(t, ast.Validate(prog))

	require.Len(t, prog.Modules, 1)
	mod := prog.Modules[0]
	assert.Equal(t, "RpgGame", mod.Name)
	require.Len(t, mod.Decls, 1)

	player, ok := mod.Decls[0].(*ast.ClassDecl)
	require.True(t, ok, "expected a class, got %T", mod.Decls[0])
	assert.Equal(t, "Player", player.Name)
	assert.Equal(t, "game.cs", prog.Files.Path(player.Span.File))
	assert.Equal(t, source.LineCol{Line: 2, Col: 1}, player.Span.Start)
	assert.Equal(t, source.LineCol{Line: 12, Col: 2}, player.Span.End)

	require.Len(t, player.Fields, 3)
	health := player.Fields[0]
	assert.Equal(t, "health", health.Name)
	assert.Equal(t, "int32", health.Type.Name)
	require.NotNil(t, health.Default)
	lit, ok := health.Default.Data.(*ast.LiteralData)
	require.True(t, ok)
	assert.Equal(t, ast.LitInt, lit.Kind)
	assert.Equal(t, "100", lit.Text)

	require.Len(t, player.Members, 1)
	ctor := player.Members[0]
	assert.Equal(t, ast.MemberConstructor, ctor.Kind)
	assert.True(t, ctor.Result.IsPlaceholder())
	require.NotNil(t, ctor.Body)
	require.Len(t, ctor.Body.Stmts, 5)

	let := ctor.Body.Stmts[0]
	assert.Equal(t, ast.StmtLet, let.Kind)
	letData := let.Data.(*ast.LetData)
	assert.True(t, letData.Type.IsPlaceholder())
	assert.Equal(t, ast.ExprNew, letData.Value.Kind)
	// Expressions without a position take the statement's.
	assert.Equal(t, let.Span, letData.Value.Span)

	assign := ctor.Body.Stmts[1].Data.(*ast.AssignData)
	assert.Equal(t, ast.ExprField, assign.Target.Kind)
	field := assign.Target.Data.(*ast.FieldData)
	assert.Equal(t, "health", field.Name)
	assert.Equal(t, -1, field.Index)
}

func TestDecodeDamageJSON(t *testing.T) {
	prog, err := Load(filepath.Join("testdata", "damage.json"))
	require.NoError(t, err)
	require.NoError(t, ast.Validate(prog))

	decls := prog.Modules[0].Decls
	require.Len(t, decls, 3)

	iface, ok := decls[0].(*ast.InterfaceDecl)
	require.True(t, ok)
	require.Len(t, iface.Signatures, 1)
	assert.Nil(t, iface.Signatures[0].Body)
	assert.Equal(t, "int32", iface.Signatures[0].Params[0].Type.Name)

	enemy := decls[1].(*ast.ClassDecl)
	require.Len(t, enemy.Implements, 1)
	assert.Equal(t, "Damageable", enemy.Implements[0].Name)
	take := enemy.Member("TakeDamage")
	require.NotNil(t, take)
	assert.Equal(t, ast.MemberMethod, take.Kind)
	bin := take.Body.Stmts[0].Data.(*ast.AssignData).Value.Data.(*ast.BinaryData)
	assert.Equal(t, ast.OpSub, bin.Op)

	game := decls[2].(*ast.ClassDecl)
	run := game.Member("Run")
	require.NotNil(t, run)
	call := run.Body.Stmts[0].Data.(*ast.LetData).Value.Data.(*ast.CallData)
	assert.Equal(t, "Create", call.Method)
	require.NotNil(t, call.Receiver)
	assert.Equal(t, ast.ExprTypeName, call.Receiver.Kind)
	require.Len(t, call.Args, 1)
	assert.Equal(t, "10", call.Args[0].Data.(*ast.LiteralData).Text)
}

func TestDecodeGenericYAML(t *testing.T) {
	prog, err := Load(filepath.Join("testdata", "generic.yaml"))
	require.NoError(t, err)
	require.NoError(t, ast.Validate(prog))

	enemy := prog.Modules[0].Decls[0].(*ast.ClassDecl)
	take := enemy.Member("TakeDamage")
	require.NotNil(t, take)
	assert.True(t, take.IsGeneric())
	assert.Equal(t, "T", take.Params[0].Type.Name)

	value := take.Body.Stmts[0].Data.(*ast.AssignData).Value.Data.(*ast.BinaryData)
	cast := value.Right.Data.(*ast.CastData)
	assert.Equal(t, "float64", cast.Type.Name)
	assert.Equal(t, ast.ExprIdent, cast.Value.Kind)

	// The module has no position of its own.
	assert.True(t, prog.Modules[0].Span.Empty())
}

func TestDecodeModulesYAML(t *testing.T) {
	prog, err := Load(filepath.Join("testdata", "modules.yaml"))
	require.NoError(t, err)
	require.NoError(t, ast.Validate(prog))
	require.Len(t, prog.Modules, 2)

	attack, ok := prog.Modules[0].Decls[2].(*ast.FuncDecl)
	require.True(t, ok, "expected a function, got %T", prog.Modules[0].Decls[2])
	assert.Equal(t, ast.DeclFunction, attack.DeclKind())
	assert.True(t, attack.Fn.IsGeneric())
	assert.Equal(t, "Attack", attack.Fn.Name)
	require.Len(t, attack.Fn.Params, 2)
	assert.Equal(t, "T", attack.Fn.Params[0].Type.Name)

	logic := prog.Modules[1]
	require.Len(t, logic.Imports, 1)
	assert.Equal(t, "RpgGame", logic.Imports[0].Name)
	assert.False(t, logic.Imports[0].Public)
	assert.Equal(t, "logic.cs", prog.Files.Path(logic.Span.File))

	update := logic.Decls[0].(*ast.FuncDecl)
	call := update.Fn.Body.Stmts[1].Data.(*ast.ExprStmtData).Expr.Data.(*ast.CallData)
	assert.Nil(t, call.Receiver)
	assert.Equal(t, "Attack", call.Method)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		data string
		want Format
	}{
		{"ast.yaml", "{}", FormatYAML},
		{"ast.YML", "", FormatYAML},
		{"ast.json", "modules: []", FormatJSON},
		{"ast", "  \n{\"modules\": []}", FormatJSON},
		{"ast", "modules: []", FormatYAML},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.path, []byte(tt.data)), "%s %q", tt.path, tt.data)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		doc     string
		invalid bool
		decode  bool
		message string
	}{
		{
			name:    "empty",
			format:  FormatYAML,
			doc:     "",
			decode:  true,
			message: "is empty",
		},
		{
			name:    "unknown yaml field",
			format:  FormatYAML,
			doc:     "modules:\n  - name: M\n    decl: []\n",
			decode:  true,
			message: "decl",
		},
		{
			name:    "unknown json field",
			format:  FormatJSON,
			doc:     `{"modules": [], "extra": 1}`,
			decode:  true,
			message: "extra",
		},
		{
			name:    "unknown declaration kind",
			format:  FormatYAML,
			doc:     "modules:\n  - name: M\n    decls:\n      - {kind: struct, name: S, at: \"4:2\"}\n",
			invalid: true,
			message: "ast.yaml:4:2: unknown declaration kind \"struct\"",
		},
		{
			name:    "unknown operator",
			format:  FormatYAML,
			doc:     "modules:\n  - name: M\n    decls:\n      - kind: class\n        name: C\n        fields:\n          - {name: f, type: int32, default: {kind: binary, op: \"**\", left: {kind: int, value: \"1\"}, right: {kind: int, value: \"2\"}}}\n",
			invalid: true,
			message: "unknown binary operator \"**\"",
		},
		{
			name:    "malformed position",
			format:  FormatJSON,
			doc:     `{"modules": [{"name": "M", "decls": [{"kind": "class", "name": "C", "at": "7"}]}]}`,
			invalid: true,
			message: "malformed position \"7\"",
		},
		{
			name:    "interface with members",
			format:  FormatJSON,
			doc:     `{"modules": [{"name": "M", "decls": [{"kind": "interface", "name": "I", "members": [{"name": "Run"}]}]}]}`,
			invalid: true,
			message: "interface I may only list signatures",
		},
		{
			name:    "function with fields",
			format:  FormatYAML,
			doc:     "modules:\n  - name: M\n    decls:\n      - kind: function\n        name: F\n        result: void\n        fields: [{name: f, type: int32}]\n",
			invalid: true,
			message: "function F may only carry a signature and a body",
		},
		{
			name:    "assignment without value",
			format:  FormatYAML,
			doc:     "modules:\n  - name: M\n    decls:\n      - kind: class\n        name: C\n        members:\n          - name: Run\n            body:\n              - {kind: assign, target: {kind: ident, name: x}}\n",
			invalid: true,
			message: "assignment needs a target and a value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), "ast.yaml", tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ast.ErrInvalidAST), "ErrInvalidAST: %v", err)
			assert.Equal(t, tt.decode, errors.Is(err, ErrDecode), "ErrDecode: %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDecodeSignatureBodyFailsValidation(t *testing.T) {
	doc := "modules:\n  - name: M\n    decls:\n      - kind: interface\n        name: I\n        signatures:\n          - {name: Run, result: void, body: []}\n"
	prog, err := Decode([]byte(doc), "ast.yaml", FormatAuto)
	require.NoError(t, err)
	err = ast.Validate(prog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ast.ErrInvalidAST))
}

func TestParsePos(t *testing.T) {
	sp, ok := parsePos(3, "4:7-5:1")
	require.True(t, ok)
	assert.Equal(t, source.Span{File: 3, Start: source.LineCol{Line: 4, Col: 7}, End: source.LineCol{Line: 5, Col: 1}}, sp)

	for _, bad := range []string{"4", "0:1", "a:b", "5:1-4:1", "1:-2"} {
		_, ok := parsePos(0, bad)
		assert.False(t, ok, bad)
	}
}
