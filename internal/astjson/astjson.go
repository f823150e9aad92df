// Package astjson decodes the JSON AST dumps produced by the Vex
// frontend (*.vex.json) into the checker's syntax tree. Every node is
// a tagged object: {"kind": ..., "line": ..., "col": ..., ...}.
package astjson

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

type decoder struct {
	file string
}

type head struct {
	Kind string `json:"kind"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// LoadFile reads and decodes one AST dump.
func LoadFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ast dump: %w", err)
	}
	return Decode(data)
}

// Decode parses a JSON AST dump.
func Decode(data []byte) (*ast.Program, error) {
	var root struct {
		File string            `json:"file"`
		Decs []json.RawMessage `json:"decs"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing ast dump: %w", err)
	}
	d := &decoder{file: root.File}
	prog := &ast.Program{File: root.File}
	for i, raw := range root.Decs {
		dec, err := d.dec(raw)
		if err != nil {
			return nil, fmt.Errorf("definition %d: %w", i, err)
		}
		prog.Decs = append(prog.Decs, dec)
	}
	return prog, nil
}

func (d *decoder) pos(h head) token.Pos {
	return token.Pos{File: d.file, Line: h.Line, Column: h.Col}
}

func (d *decoder) dec(raw json.RawMessage) (*ast.ValDec, error) {
	var v struct {
		head
		Name       string `json:"name"`
		TypeParams []struct {
			head
			Name   string `json:"name"`
			Lifted bool   `json:"lifted"`
		} `json:"type_params"`
		Params []json.RawMessage `json:"params"`
		Ret    json.RawMessage   `json:"ret"`
		Body   json.RawMessage   `json:"body"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	dec := &ast.ValDec{Name: v.Name, Loc: d.pos(v.head)}
	for _, tp := range v.TypeParams {
		dec.TypeParams = append(dec.TypeParams, ast.TypeParamDec{
			Name:   tp.Name,
			Lifted: tp.Lifted,
			Loc:    d.pos(tp.head),
		})
	}
	for _, p := range v.Params {
		pat, err := d.pattern(p)
		if err != nil {
			return nil, err
		}
		dec.Params = append(dec.Params, pat)
	}
	if len(v.Ret) > 0 && string(v.Ret) != "null" {
		ret, err := d.typeExp(v.Ret)
		if err != nil {
			return nil, err
		}
		dec.RetDecl = ret
	}
	body, err := d.exp(v.Body)
	if err != nil {
		return nil, err
	}
	dec.Body = body
	return dec, nil
}

func (d *decoder) exps(raws []json.RawMessage) ([]ast.Exp, error) {
	out := make([]ast.Exp, 0, len(raws))
	for _, raw := range raws {
		e, err := d.exp(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) exp(raw json.RawMessage) (ast.Exp, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing expression")
	}
	var h head
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	loc := d.pos(h)

	switch h.Kind {
	case "int":
		var v struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.IntLit{Value: v.Value, Loc: loc}, nil

	case "float":
		var v struct {
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.FloatLit{Value: v.Value, Loc: loc}, nil

	case "bool":
		var v struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Value: v.Value, Loc: loc}, nil

	case "var":
		var v struct {
			Names []string `json:"names"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if len(v.Names) == 0 {
			return nil, fmt.Errorf("%s: variable without a name", loc)
		}
		return &ast.Var{Names: v.Names, Loc: loc}, nil

	case "apply":
		var v struct {
			Fun  json.RawMessage   `json:"fun"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		fun, err := d.exp(v.Fun)
		if err != nil {
			return nil, err
		}
		args, err := d.exps(v.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Apply{Fun: fun, Args: args, Loc: loc}, nil

	case "binop":
		var v struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		left, err := d.exp(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.exp(v.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Op: v.Op, Left: left, Right: right, Loc: loc}, nil

	case "lambda":
		var v struct {
			Params []json.RawMessage `json:"params"`
			Ret    json.RawMessage   `json:"ret"`
			Body   json.RawMessage   `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		lam := &ast.Lambda{Loc: loc}
		for _, p := range v.Params {
			pat, err := d.pattern(p)
			if err != nil {
				return nil, err
			}
			lam.Params = append(lam.Params, pat)
		}
		if len(v.Ret) > 0 && string(v.Ret) != "null" {
			ret, err := d.typeExp(v.Ret)
			if err != nil {
				return nil, err
			}
			lam.RetDecl = ret
		}
		body, err := d.exp(v.Body)
		if err != nil {
			return nil, err
		}
		lam.Body = body
		return lam, nil

	case "let":
		var v struct {
			Pat   json.RawMessage `json:"pat"`
			Value json.RawMessage `json:"value"`
			Body  json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		pat, err := d.pattern(v.Pat)
		if err != nil {
			return nil, err
		}
		value, err := d.exp(v.Value)
		if err != nil {
			return nil, err
		}
		body, err := d.exp(v.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Pat: pat, Value: value, Body: body, Loc: loc}, nil

	case "letwith":
		var v struct {
			Dest    string            `json:"dest"`
			Src     string            `json:"src"`
			Indexes []json.RawMessage `json:"indexes"`
			Value   json.RawMessage   `json:"value"`
			Body    json.RawMessage   `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		indexes, err := d.exps(v.Indexes)
		if err != nil {
			return nil, err
		}
		value, err := d.exp(v.Value)
		if err != nil {
			return nil, err
		}
		body, err := d.exp(v.Body)
		if err != nil {
			return nil, err
		}
		return &ast.LetWith{Dest: v.Dest, Src: v.Src, Indexes: indexes, Value: value, Body: body, Loc: loc}, nil

	case "if":
		var v struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		cond, err := d.exp(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.exp(v.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.exp(v.Else)
		if err != nil {
			return nil, err
		}
		return &ast.If{Cond: cond, Then: then, Else: els, Loc: loc}, nil

	case "loop":
		var v struct {
			Pat  json.RawMessage `json:"pat"`
			Init json.RawMessage `json:"init"`
			Form json.RawMessage `json:"form"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		pat, err := d.pattern(v.Pat)
		if err != nil {
			return nil, err
		}
		init, err := d.exp(v.Init)
		if err != nil {
			return nil, err
		}
		form, err := d.loopForm(v.Form)
		if err != nil {
			return nil, err
		}
		body, err := d.exp(v.Body)
		if err != nil {
			return nil, err
		}
		return &ast.DoLoop{Pat: pat, Init: init, Form: form, Body: body, Loc: loc}, nil

	case "array":
		var v struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elems, err := d.exps(v.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Elems: elems, Loc: loc}, nil

	case "index":
		var v struct {
			Array   json.RawMessage   `json:"array"`
			Indexes []json.RawMessage `json:"indexes"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		arr, err := d.exp(v.Array)
		if err != nil {
			return nil, err
		}
		indexes, err := d.exps(v.Indexes)
		if err != nil {
			return nil, err
		}
		return &ast.Index{Array: arr, Indexes: indexes, Loc: loc}, nil

	case "record":
		var v struct {
			Fields []struct {
				head
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		rec := &ast.RecordLit{Loc: loc}
		for _, f := range v.Fields {
			value, err := d.exp(f.Value)
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, ast.FieldInit{Name: f.Name, Value: value, Loc: d.pos(f.head)})
		}
		return rec, nil

	case "project":
		var v struct {
			Rec   json.RawMessage `json:"rec"`
			Field string          `json:"field"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		rec, err := d.exp(v.Rec)
		if err != nil {
			return nil, err
		}
		return &ast.Project{Rec: rec, Field: v.Field, Loc: loc}, nil

	case "ascript":
		var v struct {
			Exp  json.RawMessage `json:"exp"`
			Type json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		e, err := d.exp(v.Exp)
		if err != nil {
			return nil, err
		}
		te, err := d.typeExp(v.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Ascript{Exp: e, Decl: te, Loc: loc}, nil
	}
	return nil, fmt.Errorf("%s: unknown expression kind %q", loc, h.Kind)
}

func (d *decoder) loopForm(raw json.RawMessage) (ast.LoopForm, error) {
	var h head
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	loc := d.pos(h)
	switch h.Kind {
	case "for":
		var v struct {
			Var   string          `json:"var"`
			Bound json.RawMessage `json:"bound"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		bound, err := d.exp(v.Bound)
		if err != nil {
			return nil, err
		}
		return &ast.ForLoop{Var: v.Var, Bound: bound, Loc: loc}, nil
	case "while":
		var v struct {
			Cond json.RawMessage `json:"cond"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		cond, err := d.exp(v.Cond)
		if err != nil {
			return nil, err
		}
		return &ast.WhileLoop{Cond: cond, Loc: loc}, nil
	}
	return nil, fmt.Errorf("%s: unknown loop form %q", loc, h.Kind)
}

func (d *decoder) pattern(raw json.RawMessage) (ast.Pattern, error) {
	var h head
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	loc := d.pos(h)
	switch h.Kind {
	case "id":
		var v struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.PatId{Name: v.Name, Loc: loc}, nil
	case "wildcard":
		return &ast.PatWildcard{Loc: loc}, nil
	case "record":
		var v struct {
			Fields []struct {
				head
				Name string          `json:"name"`
				Pat  json.RawMessage `json:"pat"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		rec := &ast.PatRecord{Loc: loc}
		for _, f := range v.Fields {
			pat, err := d.pattern(f.Pat)
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, ast.PatField{Name: f.Name, Pat: pat, Loc: d.pos(f.head)})
		}
		return rec, nil
	case "ascript":
		var v struct {
			Pat  json.RawMessage `json:"pat"`
			Type json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		pat, err := d.pattern(v.Pat)
		if err != nil {
			return nil, err
		}
		te, err := d.typeExp(v.Type)
		if err != nil {
			return nil, err
		}
		return &ast.PatAscript{Pat: pat, Decl: te, Loc: loc}, nil
	}
	return nil, fmt.Errorf("%s: unknown pattern kind %q", loc, h.Kind)
}

var primKinds = map[string]types.PrimKind{
	"bool": types.Bool,
	"i8":   types.I8,
	"i16":  types.I16,
	"i32":  types.I32,
	"i64":  types.I64,
	"f32":  types.F32,
	"f64":  types.F64,
}

func (d *decoder) typeExp(raw json.RawMessage) (ast.TypeExp, error) {
	var h head
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	loc := d.pos(h)
	switch h.Kind {
	case "prim":
		var v struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		k, ok := primKinds[v.Name]
		if !ok {
			return nil, fmt.Errorf("%s: unknown primitive type %q", loc, v.Name)
		}
		return &ast.TEPrim{K: k, Loc: loc}, nil
	case "var":
		var v struct {
			Names []string `json:"names"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.TEVar{Names: v.Names, Loc: loc}, nil
	case "array":
		var v struct {
			Elem   json.RawMessage `json:"elem"`
			Rank   int             `json:"rank"`
			Unique bool            `json:"unique"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elem, err := d.typeExp(v.Elem)
		if err != nil {
			return nil, err
		}
		rank := v.Rank
		if rank == 0 {
			rank = 1
		}
		return &ast.TEArray{Elem: elem, Rank: rank, Unique: v.Unique, Loc: loc}, nil
	case "record":
		var v struct {
			Fields []struct {
				Name string          `json:"name"`
				Type json.RawMessage `json:"type"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		rec := &ast.TERecord{Loc: loc}
		for _, f := range v.Fields {
			te, err := d.typeExp(f.Type)
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, ast.TEField{Name: f.Name, Type: te})
		}
		return rec, nil
	case "arrow":
		var v struct {
			Param  json.RawMessage `json:"param"`
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		param, err := d.typeExp(v.Param)
		if err != nil {
			return nil, err
		}
		result, err := d.typeExp(v.Result)
		if err != nil {
			return nil, err
		}
		return &ast.TEArrow{Param: param, Result: result, Loc: loc}, nil
	case "app":
		var v struct {
			Head []string          `json:"head"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		app := &ast.TEApp{Head: v.Head, Loc: loc}
		for _, a := range v.Args {
			te, err := d.typeExp(a)
			if err != nil {
				return nil, err
			}
			app.Args = append(app.Args, te)
		}
		return app, nil
	}
	return nil, fmt.Errorf("%s: unknown type expression kind %q", loc, h.Kind)
}
