package astio

// The document mirrors the parser's output. Positions are strings of the
// form "line:col" or "line:col-line:col".

type documentDTO struct {
	File    string      `yaml:"file" json:"file"`
	Modules []moduleDTO `yaml:"modules" json:"modules"`
}

type moduleDTO struct {
	Name  string    `yaml:"name" json:"name"`
	File  string    `yaml:"file" json:"file"`
	At    string    `yaml:"at" json:"at"`
	Use   []useDTO  `yaml:"use" json:"use"`
	Decls []declDTO `yaml:"decls" json:"decls"`
}

type useDTO struct {
	Name string `yaml:"name" json:"name"`
	At   string `yaml:"at" json:"at"`
	// Pub re-exports the module to importers of this one.
	Pub bool `yaml:"pub" json:"pub"`
}

// declDTO is a class, an interface or a function, told apart by Kind. A
// function carries its signature and body inline.
type declDTO struct {
	Kind       string      `yaml:"kind" json:"kind"`
	Name       string      `yaml:"name" json:"name"`
	At         string      `yaml:"at" json:"at"`
	Implements []string    `yaml:"implements" json:"implements"`
	Fields     []fieldDTO  `yaml:"fields" json:"fields"`
	Members    []memberDTO `yaml:"members" json:"members"`
	Signatures []memberDTO `yaml:"signatures" json:"signatures"`

	TypeParam string     `yaml:"type_param" json:"type_param"`
	Params    []paramDTO `yaml:"params" json:"params"`
	Result    string     `yaml:"result" json:"result"`
	Body      *[]stmtDTO `yaml:"body" json:"body"`
}

type fieldDTO struct {
	Name    string   `yaml:"name" json:"name"`
	Type    string   `yaml:"type" json:"type"`
	At      string   `yaml:"at" json:"at"`
	Default *exprDTO `yaml:"default" json:"default"`
}

type memberDTO struct {
	// Kind is "method" (the default) or "constructor".
	Kind      string     `yaml:"kind" json:"kind"`
	Name      string     `yaml:"name" json:"name"`
	At        string     `yaml:"at" json:"at"`
	TypeParam string     `yaml:"type_param" json:"type_param"`
	Params    []paramDTO `yaml:"params" json:"params"`
	Result    string     `yaml:"result" json:"result"`
	Body      *[]stmtDTO `yaml:"body" json:"body"`
}

type paramDTO struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
	At   string `yaml:"at" json:"at"`
}

type stmtDTO struct {
	Kind string `yaml:"kind" json:"kind"`
	At   string `yaml:"at" json:"at"`

	// let
	Name  string   `yaml:"name" json:"name"`
	Type  string   `yaml:"type" json:"type"`
	Value *exprDTO `yaml:"value" json:"value"`

	Target *exprDTO `yaml:"target" json:"target"`
	Expr   *exprDTO `yaml:"expr" json:"expr"`

	// if and while
	Cond *exprDTO   `yaml:"cond" json:"cond"`
	Then []stmtDTO  `yaml:"then" json:"then"`
	Else *[]stmtDTO `yaml:"else" json:"else"`
	Body []stmtDTO  `yaml:"body" json:"body"`
}

type exprDTO struct {
	Kind string `yaml:"kind" json:"kind"`
	At   string `yaml:"at" json:"at"`

	// Value is the literal text of int, float, bool, string and char.
	Value string `yaml:"value" json:"value"`

	// Name is the identifier, field, method or type name.
	Name   string   `yaml:"name" json:"name"`
	Object *exprDTO `yaml:"object" json:"object"`

	Op      string    `yaml:"op" json:"op"`
	Left    *exprDTO  `yaml:"left" json:"left"`
	Right   *exprDTO  `yaml:"right" json:"right"`
	Operand *exprDTO  `yaml:"operand" json:"operand"`
	Args    []exprDTO `yaml:"args" json:"args"`

	// Type is the target of new and cast.
	Type string `yaml:"type" json:"type"`
}
