package testkit

import "cstar/internal/ast"

// playerClass declares Player{health, x, y: int32} with defaults and a
// constructor assigning the fields listed in assign.
func (b *Builder) playerClass(assign ...string) *ast.ClassDecl {
	stmts := []*ast.Stmt{b.Let("p", "", b.New(""))}
	for _, f := range assign {
		stmts = append(stmts, b.Assign(b.Sel(b.Ident("p"), f), b.Int("0")))
	}
	stmts = append(stmts, b.Return(b.Ident("p")))
	return b.Class("Player", nil,
		Fields(
			b.FieldDefault("health", "int32", b.Int("100")),
			b.FieldDefault("x", "int32", b.Int("0")),
			b.FieldDefault("y", "int32", b.Int("0")),
		),
		b.Ctor("Create", nil, stmts...),
	)
}

// ScenarioA is a Player whose constructor assigns every field.
func ScenarioA() *ast.Program {
	b := NewBuilder("game.cs")
	return b.Program(b.Module("RpgGame", b.playerClass("health", "x", "y")))
}

// ScenarioB is a Player whose constructor never assigns y.
func ScenarioB() *ast.Program {
	b := NewBuilder("game.cs")
	return b.Program(b.Module("RpgGame", b.playerClass("health", "x")))
}

// ScenarioC declares Damageable, an implementing Enemy and a Player that
// does not implement it. Game.Run calls TakeDamage on a known Enemy and
// Game.Hit on an arbitrary Damageable. With misuse, Game.Run also calls
// TakeDamage on a Player.
func ScenarioC(misuse bool) *ast.Program {
	b := NewBuilder("game.cs")
	damageable := b.Interface("Damageable",
		b.Sig("TakeDamage", "void", b.Param("amount", "int32")),
	)
	enemy := b.Class("Enemy", []string{"Damageable"},
		Fields(b.Field("hp", "int32")),
		b.Ctor("Create", Params(b.Param("hp", "int32")),
			b.Let("e", "", b.New("")),
			b.Assign(b.Sel(b.Ident("e"), "hp"), b.Ident("hp")),
			b.Return(b.Ident("e")),
		),
		b.Method("TakeDamage", "void", Params(b.Param("amount", "int32")),
			b.Assign(b.Ident("hp"), b.Bin("-", b.Ident("hp"), b.Ident("amount"))),
		),
	)
	player := b.playerClass("health", "x", "y")
	run := []*ast.Stmt{
		b.Let("e", "", b.Call(b.TypeName("Enemy"), "Create", b.Int("10"))),
		b.Do(b.Call(b.Ident("e"), "TakeDamage", b.Int("5"))),
	}
	if misuse {
		run = append(run,
			b.Let("p", "", b.Call(b.TypeName("Player"), "Create")),
			b.Do(b.Call(b.Ident("p"), "TakeDamage", b.Int("3"))),
		)
	}
	game := b.Class("Game", nil, nil,
		b.Method("Run", "void", nil, run...),
		b.Method("Hit", "void", Params(b.Param("target", "Damageable")),
			b.Do(b.Call(b.Ident("target"), "TakeDamage", b.Int("1"))),
		),
	)
	return b.Program(b.Module("GameLogic", damageable, enemy, player, game))
}

// ScenarioD declares Enemy with a generic TakeDamage<T> called with int32
// twice and with float64 once.
func ScenarioD() *ast.Program {
	b := NewBuilder("game.cs")
	enemy := b.Class("Enemy", nil,
		Fields(b.Field("hp", "float64")),
		b.Ctor("Create", nil,
			b.Let("e", "", b.New("")),
			b.Assign(b.Sel(b.Ident("e"), "hp"), b.Float("100.0")),
			b.Return(b.Ident("e")),
		),
		b.Generic("TakeDamage", "T", "void", Params(b.Param("amount", "T")),
			b.Assign(b.Ident("hp"), b.Bin("-", b.Ident("hp"), b.Cast("float64", b.Ident("amount")))),
		),
	)
	game := b.Class("Game", nil, nil,
		b.Method("Run", "void", nil,
			b.Let("e", "", b.Call(b.TypeName("Enemy"), "Create")),
			b.Do(b.Call(b.Ident("e"), "TakeDamage", b.Int("5"))),
			b.Do(b.Call(b.Ident("e"), "TakeDamage", b.Float("2.5"))),
			b.Do(b.Call(b.Ident("e"), "TakeDamage", b.Int("7"))),
		),
	)
	return b.Program(b.Module("GameLogic", enemy, game))
}

// ScenarioModules splits a game over two modules. RpgGame declares
// Damageable, an implementing Enemy and a generic function Attack<T>;
// GameLogic imports RpgGame and its Update calls Attack with an Enemy.
func ScenarioModules() *ast.Program {
	b := NewBuilder("game.cs")
	damageable := b.Interface("Damageable",
		b.Sig("TakeDamage", "void", b.Param("amount", "int32")),
	)
	enemy := b.Class("Enemy", []string{"Damageable"},
		Fields(b.FieldDefault("hp", "int32", b.Int("50"))),
		b.Method("TakeDamage", "void", Params(b.Param("amount", "int32")),
			b.Assign(b.Ident("hp"), b.Bin("-", b.Ident("hp"), b.Ident("amount"))),
		),
	)
	attack := b.GenericFunc("Attack", "T", "void",
		Params(b.Param("target", "T"), b.Param("damage", "int32")),
		b.Do(b.Call(b.Ident("target"), "TakeDamage", b.Ident("damage"))),
	)
	rpg := b.Module("RpgGame", damageable, enemy, attack)

	update := b.Func("Update", "void", Params(b.Param("p", "Player")),
		b.Let("e", "", b.Call(b.TypeName("Enemy"), "Create")),
		b.Do(b.Call(nil, "Attack", b.Ident("e"), b.Sel(b.Ident("p"), "health"))),
	)
	logic := b.Use(b.Module("GameLogic", b.playerClass("health", "x", "y"), update), "RpgGame")
	return b.Program(rpg, logic)
}
