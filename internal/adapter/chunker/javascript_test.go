package chunker

import (
	"testing"

	"codechunk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJavaScript_ArrowExpressionBody(t *testing.T) {
	src := "const f = () => 42;"
	res := parse(t, src, "javascript")

	require.Len(t, res.Chunks, 1)
	c := res.Chunks[0]
	assert.Equal(t, domain.KindFunction, c.Kind)
	assert.Equal(t, "f", c.Name)
	assert.Equal(t, src, c.Code)
	assert.InDelta(t, 0.8, c.Confidence, 1e-9)

	meta := c.Meta.(*domain.ScriptMeta)
	assert.True(t, meta.IsArrow)
	assert.True(t, meta.ExpressionBody)
}

func TestJavaScript_ExpressionConfidence(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"semicolon", "const a = (x) => x * 2;\n", 0.8},
		{"line end", "const a = (x) => x * 2\n", 0.7},
		{"nested arrow", "const a = (x) => (y) => x + y;\n", 0.72},
		{"block body", "const a = (x) => {\n  return x;\n};\n", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.src, "javascript")
			require.Len(t, res.Chunks, 1)
			assert.InDelta(t, tt.want, res.Chunks[0].Confidence, 1e-9)
		})
	}
}

func TestJavaScript_ArrowBodyContinuesOnLeadingOperator(t *testing.T) {
	src := "const g = () => x\n  .map(y => y)\n  .filter(Boolean);\nfunction h() {}\n"
	res := parse(t, src, "javascript")

	g := mustFind(t, res, domain.KindFunction, "g")
	assert.Equal(t, 1, g.StartLine)
	assert.Equal(t, 3, g.EndLine)
	assert.Equal(t, "const g = () => x\n  .map(y => y)\n  .filter(Boolean);", g.Code)
	assert.InDelta(t, 0.72, g.Confidence, 1e-9)
	assert.Equal(t, 4, mustFind(t, res, domain.KindFunction, "h").StartLine)

	tests := []struct {
		name    string
		src     string
		endLine int
	}{
		{"ternary", "const t = (a) => a\n  ? 1\n  : 2\nconst u = 1\n", 3},
		{"logical", "const t = (a) => a\n\n  && b\n  || c\n", 4},
		{"increment starts a statement", "const t = (a) => a\n++counter\n", 1},
		{"generator member", "class A {\n  f = () => 1\n  *gen() {}\n}\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.src, "javascript")
			var fn domain.Chunk
			for _, c := range res.Chunks {
				if c.Kind == domain.KindFunction || c.Kind == domain.KindMethod {
					fn = c
					break
				}
			}
			assert.Equal(t, tt.endLine, fn.EndLine)
		})
	}
}

func TestJavaScript_ClassMembers(t *testing.T) {
	src := `class Animal extends Base {
  constructor(name) {
    super();
    this.name = name;
  }

  static create(name) {
    return new Animal(name);
  }

  async *gen() {
    yield 1;
  }

  get label() {
    return this.name;
  }

  #secret() {
    return 42;
  }

  handle = (event) => {
    console.log(event);
  };
}
`
	res := parse(t, src, "javascript")
	assertWellFormed(t, src, res)

	class := mustFind(t, res, domain.KindClass, "Animal")
	assert.Equal(t, 1, class.StartLine)
	assert.Equal(t, 26, class.EndLine)
	assert.Equal(t, "Base", class.Meta.(*domain.ScriptMeta).Extends)

	methods := res.ChunksOfKind(domain.KindMethod)
	assert.Equal(t, []string{"constructor", "create", "gen", "label", "#secret", "handle"}, names(methods))

	meta := func(name string) *domain.ScriptMeta {
		return mustFind(t, res, domain.KindMethod, name).Meta.(*domain.ScriptMeta)
	}
	assert.True(t, meta("create").IsStatic)
	assert.True(t, meta("gen").IsAsync)
	assert.True(t, meta("gen").IsGenerator)
	assert.True(t, meta("label").IsGetter)
	assert.True(t, meta("#secret").IsPrivate)
	assert.True(t, meta("handle").IsArrow)

	handle := mustFind(t, res, domain.KindMethod, "handle")
	assert.Equal(t, 23, handle.StartLine)
	assert.Equal(t, 25, handle.EndLine)
}

func TestJavaScript_MemberOnClassBraceLine(t *testing.T) {
	res := parse(t, "class A { m() {\n    return 1 }\n}\n", "javascript")
	require.Len(t, res.Chunks, 2)

	a := mustFind(t, res, domain.KindClass, "A")
	m := mustFind(t, res, domain.KindMethod, "m")
	assert.Equal(t, 1, m.StartLine)
	assert.Equal(t, 2, m.EndLine)
	assert.Equal(t, "A", m.ClassName())
	assert.True(t, a.StrictlyContains(m))

	oneLine := parse(t, "class B { n() {} }\n", "javascript")
	require.Len(t, oneLine.Chunks, 1)
	assert.Equal(t, domain.KindClass, oneLine.Chunks[0].Kind)

	rust := parse(t, "impl S { fn a(&self) {\n    }\n}\n", "rust")
	fn := mustFind(t, rust, domain.KindMethod, "a")
	assert.Equal(t, 1, fn.StartLine)
	assert.Equal(t, 2, fn.EndLine)
}

func TestJavaScript_AnonymousDefaultClass(t *testing.T) {
	src := "export default class {\n  run() {}\n}\n"
	res := parse(t, src, "javascript")

	require.Len(t, res.Chunks, 1)
	assert.Equal(t, domain.KindClass, res.Chunks[0].Kind)
	assert.Empty(t, res.Chunks[0].Name)
	assert.True(t, res.Chunks[0].Meta.(*domain.ScriptMeta).IsDefaultExport)
}

func TestJavaScript_UnterminatedFunction(t *testing.T) {
	src := "function ok() {\n  return 1;\n}\n\nfunction broken() {\n  if (x) {\n"
	res := parse(t, src, "javascript")
	assertWellFormed(t, src, res)

	require.Len(t, res.Chunks, 2)
	broken := res.Chunks[1]
	assert.Equal(t, "broken", broken.Name)
	assert.Equal(t, confidenceFloor, broken.Confidence)
	assert.Equal(t, 5, broken.StartLine)
	assert.Equal(t, 7, broken.EndLine)
}

func TestJavaScript_Imports(t *testing.T) {
	src := `import React, { useState as useS } from 'react';
import * as path from 'path';
import './styles.css';
const fs = require('fs');
const { join, resolve: res } = require('path');
`
	res := parse(t, src, "javascript")
	assert.Equal(t, []domain.ImportRecord{
		{Module: "react", Names: []string{"React", "useState"}, Alias: map[string]string{"useState": "useS"}},
		{Module: "path", Names: []string{"*"}, Alias: map[string]string{"*": "path"}},
		{Module: "./styles.css", Names: []string{}},
		{Module: "fs", Names: []string{"fs"}},
		{Module: "path", Names: []string{"join", "resolve"}, Alias: map[string]string{"resolve": "res"}},
	}, res.Imports)
}

func TestJavaScript_Exports(t *testing.T) {
	src := `export const a = 1;
export default class B {}
export function c() {}
export { d, e as f };
export * from './all';
`
	res := parse(t, src, "javascript")
	assert.Equal(t, []domain.ExportRecord{
		{Names: []string{"a"}},
		{Names: []string{"B"}, IsDefault: true},
		{Names: []string{"c"}},
		{Names: []string{"d", "e"}, Alias: map[string]string{"e": "f"}},
		{Module: "./all", Names: []string{"*"}},
	}, res.Exports)
}

func TestJavaScript_StatementsSharingALine(t *testing.T) {
	src := "import a from 'a'; import { b, c as d } from 'b'; import * as ns from 'n';\n" +
		"import './x.css'; const fs = require('fs');\n" +
		"export const x = 1; export const y = 2;\n" +
		"export default z; export { w };\n" +
		"const s = 'import q from \"q\"; export const v = 1';\n"
	res := parse(t, src, "javascript")

	assert.Equal(t, []domain.ImportRecord{
		{Module: "a", Names: []string{"a"}},
		{Module: "b", Names: []string{"b", "c"}, Alias: map[string]string{"c": "d"}},
		{Module: "n", Names: []string{"*"}, Alias: map[string]string{"*": "ns"}},
		{Module: "./x.css", Names: []string{}},
		{Module: "fs", Names: []string{"fs"}},
	}, res.Imports)

	assert.Equal(t, []domain.ExportRecord{
		{Names: []string{"x"}},
		{Names: []string{"y"}},
		{Names: []string{"z"}, IsDefault: true},
		{Names: []string{"w"}},
	}, res.Exports)
}

func TestJavaScript_CommonJSFixture(t *testing.T) {
	src := readFixture(t, "legacy_widget.js")
	res := parse(t, src, "javascript")

	assert.Equal(t, []string{"Widget", "constructor", "render", "from", "strip", "double"}, names(res.Chunks))

	widget := mustFind(t, res, domain.KindClass, "Widget")
	assert.Equal(t, 8, widget.StartLine, "doc comment folds into the class")
	assert.Equal(t, 24, widget.EndLine)
	assert.Equal(t, "EventEmitter", widget.Meta.(*domain.ScriptMeta).Extends)
	assert.True(t, mustFind(t, res, domain.KindMethod, "from").Meta.(*domain.ScriptMeta).IsStatic)

	strip := mustFind(t, res, domain.KindFunction, "strip")
	assert.Equal(t, 26, strip.StartLine)
	assert.Equal(t, 28, strip.EndLine)

	assert.Equal(t, []domain.ImportRecord{
		{Module: "path", Names: []string{"path"}},
		{Module: "events", Names: []string{"EventEmitter"}},
	}, res.Imports)
	assert.Equal(t, []domain.ExportRecord{
		{Names: []string{"Widget", "strip", "twice"}, Alias: map[string]string{"twice": "double"}},
	}, res.Exports)
}

func TestTypeScript_TypeDeclarations(t *testing.T) {
	src := `export interface Props extends Base, Other {
  name: string;
}

type Handler<T> = (value: T) => void;

export enum Color {
  Red,
  Green,
}

abstract class Shape {
  abstract area(): number;
}
`
	res := parse(t, src, "typescript")
	assertWellFormed(t, src, res)

	props := mustFind(t, res, domain.KindClass, "Props")
	pm := props.Meta.(*domain.TypeDeclMeta)
	assert.True(t, pm.IsInterface)
	assert.True(t, pm.IsProps)
	assert.True(t, pm.IsExported)
	assert.Equal(t, []string{"Base", "Other"}, pm.Extends)
	assert.Equal(t, 3, props.EndLine)

	handler := mustFind(t, res, domain.KindClass, "Handler")
	assert.True(t, handler.Meta.(*domain.TypeDeclMeta).IsTypeAlias)
	assert.Equal(t, 5, handler.StartLine)
	assert.Equal(t, 5, handler.EndLine)
	assert.Equal(t, 1.0, handler.Confidence)

	color := mustFind(t, res, domain.KindClass, "Color")
	assert.True(t, color.Meta.(*domain.TypeDeclMeta).IsEnum)
	assert.Equal(t, [2]int{7, 10}, [2]int{color.StartLine, color.EndLine})

	shape := mustFind(t, res, domain.KindClass, "Shape")
	assert.True(t, shape.Meta.(*domain.ScriptMeta).IsAbstract)
	area := mustFind(t, res, domain.KindMethod, "area")
	assert.Equal(t, 13, area.StartLine)
	assert.Equal(t, 13, area.EndLine)
	assert.True(t, area.Meta.(*domain.ScriptMeta).IsAbstract)
}

func TestTypeScript_DecoratorsFoldIntoMember(t *testing.T) {
	src := `class Api {
  @Get('/users')
  list() {
    return [];
  }
}
`
	res := parse(t, src, "typescript")
	list := mustFind(t, res, domain.KindMethod, "list")
	assert.Equal(t, 2, list.StartLine)
	assert.Equal(t, 5, list.EndLine)
}

func TestJavaScript_RegexAndTemplateMasking(t *testing.T) {
	src := "const re = /[{}]/g;\nconst tpl = `${a}}{`;\nfunction after() {\n  return 1;\n}\n"
	res := parse(t, src, "javascript")

	require.Len(t, res.Chunks, 1)
	assert.Equal(t, "after", res.Chunks[0].Name)
	assert.Equal(t, 1.0, res.Chunks[0].Confidence)
}
