package astjson_test

import (
	"testing"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/astjson"
	"github.com/vexlang/vex/internal/types"
)

const sampleDump = `{
  "file": "main.vex",
  "decs": [
    {
      "kind": "def", "line": 1, "col": 1,
      "name": "first",
      "type_params": [{"kind": "tparam", "name": "a", "lifted": false, "line": 1, "col": 11}],
      "params": [
        {
          "kind": "ascript", "line": 1, "col": 15,
          "pat": {"kind": "id", "name": "xs", "line": 1, "col": 15},
          "type": {"kind": "array", "rank": 1, "unique": false, "line": 1, "col": 19,
                   "elem": {"kind": "var", "names": ["a"], "line": 1, "col": 21}}
        }
      ],
      "ret": {"kind": "var", "names": ["a"], "line": 1, "col": 25},
      "body": {
        "kind": "index", "line": 2, "col": 3,
        "array": {"kind": "var", "names": ["xs"], "line": 2, "col": 3},
        "indexes": [{"kind": "int", "value": 0, "line": 2, "col": 6}]
      }
    }
  ]
}`

func TestDecode(t *testing.T) {
	prog, err := astjson.Decode([]byte(sampleDump))
	if err != nil {
		t.Fatal(err)
	}
	if prog.File != "main.vex" {
		t.Fatalf("file: got %q", prog.File)
	}
	if len(prog.Decs) != 1 {
		t.Fatalf("expected one definition, got %d", len(prog.Decs))
	}

	d := prog.Decs[0]
	if d.Name != "first" {
		t.Fatalf("name: got %q", d.Name)
	}
	if len(d.TypeParams) != 1 || d.TypeParams[0].Name != "a" || d.TypeParams[0].Lifted {
		t.Fatalf("type params: got %+v", d.TypeParams)
	}
	if d.Loc.Line != 1 || d.Loc.Column != 1 || d.Loc.File != "main.vex" {
		t.Fatalf("position: got %v", d.Loc)
	}

	asc, ok := d.Params[0].(*ast.PatAscript)
	if !ok {
		t.Fatalf("param should be an ascription, got %T", d.Params[0])
	}
	if id, ok := asc.Pat.(*ast.PatId); !ok || id.Name != "xs" {
		t.Fatalf("ascribed pattern: got %T", asc.Pat)
	}
	arr, ok := asc.Decl.(*ast.TEArray)
	if !ok || arr.Rank != 1 || arr.Unique {
		t.Fatalf("ascribed type: got %T", asc.Decl)
	}

	ix, ok := d.Body.(*ast.Index)
	if !ok {
		t.Fatalf("body should be an index, got %T", d.Body)
	}
	if lit, ok := ix.Indexes[0].(*ast.IntLit); !ok || lit.Value != 0 {
		t.Fatalf("index: got %T", ix.Indexes[0])
	}
	if ix.Loc.Line != 2 || ix.Loc.Column != 3 {
		t.Fatalf("body position: got %v", ix.Loc)
	}
}

func TestDecodeAllExpressionForms(t *testing.T) {
	const dump = `{
  "file": "forms.vex",
  "decs": [{
    "kind": "def", "line": 1, "col": 1, "name": "f",
    "params": [{"kind": "id", "name": "b", "line": 1, "col": 7}],
    "body": {
      "kind": "if", "line": 2, "col": 3,
      "cond": {"kind": "var", "names": ["b"], "line": 2, "col": 6},
      "then": {
        "kind": "let", "line": 3, "col": 5,
        "pat": {"kind": "wildcard", "line": 3, "col": 9},
        "value": {"kind": "record", "line": 3, "col": 13, "fields": [
          {"name": "x", "line": 3, "col": 14,
           "value": {"kind": "float", "value": 1.5, "line": 3, "col": 17}}
        ]},
        "body": {
          "kind": "loop", "line": 4, "col": 5,
          "pat": {"kind": "id", "name": "acc", "line": 4, "col": 10},
          "init": {"kind": "int", "value": 0, "line": 4, "col": 16},
          "form": {"kind": "while", "line": 4, "col": 19,
                   "cond": {"kind": "bool", "value": false, "line": 4, "col": 25}},
          "body": {"kind": "var", "names": ["acc"], "line": 5, "col": 7}
        }
      },
      "else": {
        "kind": "apply", "line": 6, "col": 5,
        "fun": {"kind": "var", "names": ["g"], "line": 6, "col": 5},
        "args": [{"kind": "array", "line": 6, "col": 7,
                  "elems": [{"kind": "int", "value": 1, "line": 6, "col": 8}]}]
      }
    }
  }]
}`
	prog, err := astjson.Decode([]byte(dump))
	if err != nil {
		t.Fatal(err)
	}
	iff, ok := prog.Decs[0].Body.(*ast.If)
	if !ok {
		t.Fatalf("body: got %T", prog.Decs[0].Body)
	}
	let, ok := iff.Then.(*ast.Let)
	if !ok {
		t.Fatalf("then: got %T", iff.Then)
	}
	loop, ok := let.Body.(*ast.DoLoop)
	if !ok {
		t.Fatalf("let body: got %T", let.Body)
	}
	if _, ok := loop.Form.(*ast.WhileLoop); !ok {
		t.Fatalf("loop form: got %T", loop.Form)
	}
	if _, ok := iff.Else.(*ast.Apply); !ok {
		t.Fatalf("else: got %T", iff.Else)
	}
}

func TestDecodePrimTypes(t *testing.T) {
	const dump = `{
  "file": "p.vex",
  "decs": [{
    "kind": "def", "line": 1, "col": 1, "name": "n",
    "ret": {"kind": "prim", "name": "f64", "line": 1, "col": 9},
    "body": {"kind": "float", "value": 2.5, "line": 1, "col": 15}
  }]
}`
	prog, err := astjson.Decode([]byte(dump))
	if err != nil {
		t.Fatal(err)
	}
	prim, ok := prog.Decs[0].RetDecl.(*ast.TEPrim)
	if !ok || prim.K != types.F64 {
		t.Fatalf("ret: got %T", prog.Decs[0].RetDecl)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	const dump = `{
  "file": "bad.vex",
  "decs": [{
    "kind": "def", "line": 1, "col": 1, "name": "f",
    "body": {"kind": "goto", "line": 1, "col": 9}
  }]
}`
	if _, err := astjson.Decode([]byte(dump)); err == nil {
		t.Fatal("unknown expression kind should be rejected")
	}
}

func TestDecodeRejectsUnknownPrim(t *testing.T) {
	const dump = `{
  "file": "bad.vex",
  "decs": [{
    "kind": "def", "line": 1, "col": 1, "name": "f",
    "ret": {"kind": "prim", "name": "u128", "line": 1, "col": 9},
    "body": {"kind": "int", "value": 0, "line": 1, "col": 16}
  }]
}`
	if _, err := astjson.Decode([]byte(dump)); err == nil {
		t.Fatal("unknown primitive should be rejected")
	}
}
