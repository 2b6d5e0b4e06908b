package annotation

import (
	"strings"
	"testing"

	"gdgen/internal/diag"
	"gdgen/internal/slogutil"
	"gdgen/internal/symbols"
	"gdgen/internal/syntax"
)

var shaderMarker = &Marker{
	Name:      "ShaderScript",
	Namespace: DefaultNamespace,
	Target:    TargetClass,
	Fields: []Field{
		{Name: "chacheShaderMaterialProp", Kind: KindBool},
		{Name: "chacheShaderScript", Kind: KindBool},
		{Name: "materialMemberName", Kind: KindString},
		{Name: "shaderScriptPath", Kind: KindString},
		{Name: "isVisualShader", Kind: KindBool},
	},
	Overloads: []Overload{
		{
			Params: []Param{
				{Name: "shaderScriptPath", Kind: KindString},
				{Name: "chacheShaderMaterialProp", Kind: KindBool, Default: Bool(false)},
				{Name: "chacheShaderScript", Kind: KindBool, Default: Bool(false)},
				{Name: "materialMemberName", Kind: KindString, Default: String("Material")},
			},
			Implied: map[string]Value{"isVisualShader": *Bool(false)},
		},
		{
			Params: []Param{
				{Name: "chacheShaderMaterialProp", Kind: KindBool, Default: Bool(false)},
				{Name: "chacheShaderScript", Kind: KindBool, Default: Bool(false)},
				{Name: "materialMemberName", Kind: KindString, Default: String("Material")},
				{Name: "isVisualShader", Kind: KindBool, Default: Bool(false)},
			},
			Implied: map[string]Value{"shaderScriptPath": *String("")},
		},
	},
}

var notificationMarker = &Marker{
	Name:      "WhatNotification",
	Namespace: DefaultNamespace,
	Target:    TargetClass,
	Fields:    []Field{{Name: "baseCall", Kind: KindInt}},
	Enums:     testEnums,
	Overloads: []Overload{
		{Params: []Param{{Name: "baseCall", Kind: KindEnum, Enum: "BaseCall", Default: EnumValue("NoCall", 0)}}},
		{Params: []Param{{Name: "baseCall", Kind: KindInt, Default: Int(0)}}},
	},
}

var methodMarker = &Marker{
	Name:          "WhatNotificationMethod",
	Namespace:     DefaultNamespace,
	Target:        TargetMethod,
	AllowMultiple: true,
	Fields:        []Field{{Name: "what", Kind: KindInt}},
	Overloads:     []Overload{{Params: []Param{{Name: "what", Kind: KindInt}}}},
}

func args(exprs ...string) []syntax.AttributeArg {
	out := make([]syntax.AttributeArg, 0, len(exprs))
	for _, e := range exprs {
		if name, value, ok := strings.Cut(e, ": "); ok {
			out = append(out, syntax.AttributeArg{Name: name, Expr: value})
			continue
		}
		if name, value, ok := strings.Cut(e, " = "); ok {
			out = append(out, syntax.AttributeArg{Name: name, Assign: true, Expr: value})
			continue
		}
		out = append(out, syntax.AttributeArg{Expr: e})
	}
	return out
}

func TestMarkersValidate(t *testing.T) {
	for _, m := range []*Marker{shaderMarker, notificationMarker, methodMarker} {
		if err := m.Validate(); err != nil {
			t.Errorf("%s.Validate() = %v", m.Name, err)
		}
	}
	bad := &Marker{Name: "Bad", Fields: []Field{{Name: "a", Kind: KindBool}},
		Overloads: []Overload{{Params: []Param{{Name: "b", Kind: KindBool}}}}}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject unknown fields")
	}
}

func TestApply_OverloadReplay(t *testing.T) {
	tests := []struct {
		name     string
		marker   *Marker
		args     []syntax.AttributeArg
		overload int
		check    func(t *testing.T, in *Instance)
	}{
		{
			name:     "path first overload",
			marker:   shaderMarker,
			args:     args(`"res://water.gdshader"`, "true"),
			overload: 0,
			check: func(t *testing.T, in *Instance) {
				if in.String("shaderScriptPath") != "res://water.gdshader" {
					t.Errorf("shaderScriptPath = %q", in.String("shaderScriptPath"))
				}
				if !in.Bool("chacheShaderMaterialProp") || in.Bool("chacheShaderScript") {
					t.Error("second positional argument should set chacheShaderMaterialProp only")
				}
				if in.String("materialMemberName") != "Material" {
					t.Errorf("materialMemberName default = %q", in.String("materialMemberName"))
				}
			},
		},
		{
			name:     "bool first overload",
			marker:   shaderMarker,
			args:     args("true", "false", `"Mat"`, "true"),
			overload: 1,
			check: func(t *testing.T, in *Instance) {
				if !in.Bool("isVisualShader") || in.String("materialMemberName") != "Mat" {
					t.Errorf("values = %+v", in.Values)
				}
				if in.String("shaderScriptPath") != "" {
					t.Error("implied path should be empty")
				}
			},
		},
		{
			name:     "named argument out of order",
			marker:   shaderMarker,
			args:     args("isVisualShader: true", "chacheShaderScript: true"),
			overload: 1,
			check: func(t *testing.T, in *Instance) {
				if !in.Bool("isVisualShader") || !in.Bool("chacheShaderScript") || in.Bool("chacheShaderMaterialProp") {
					t.Errorf("values = %+v", in.Values)
				}
			},
		},
		{
			name:     "no arguments",
			marker:   shaderMarker,
			args:     nil,
			overload: 1,
			check: func(t *testing.T, in *Instance) {
				if in.String("materialMemberName") != "Material" {
					t.Errorf("materialMemberName = %q", in.String("materialMemberName"))
				}
			},
		},
		{
			name:     "enum overload",
			marker:   notificationMarker,
			args:     args("BaseCall.After"),
			overload: 0,
			check: func(t *testing.T, in *Instance) {
				if in.Int("baseCall") != 1 {
					t.Errorf("baseCall = %d", in.Int("baseCall"))
				}
			},
		},
		{
			name:     "int overload",
			marker:   notificationMarker,
			args:     args("-1"),
			overload: 1,
			check: func(t *testing.T, in *Instance) {
				if in.Int("baseCall") != -1 {
					t.Errorf("baseCall = %d", in.Int("baseCall"))
				}
			},
		},
		{
			name:     "null leaves zero value",
			marker:   shaderMarker,
			args:     args("null", "true"),
			overload: 0,
			check: func(t *testing.T, in *Instance) {
				if in.String("shaderScriptPath") != "" || !in.Value("shaderScriptPath").Null {
					t.Errorf("shaderScriptPath = %+v", in.Value("shaderScriptPath"))
				}
			},
		},
		{
			name:     "unresolved constant keeps its text",
			marker:   methodMarker,
			args:     args("Node.NotificationReady"),
			overload: 0,
			check: func(t *testing.T, in *Instance) {
				v := in.Value("what")
				if in.Int("what") != 0 || v.Resolved || v.Expr != "Node.NotificationReady" {
					t.Errorf("what = %+v", v)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, idx, ok := Apply(tt.marker, tt.args)
			if !ok {
				t.Fatal("Apply() found no overload")
			}
			if idx != tt.overload {
				t.Errorf("overload = %d, want %d", idx, tt.overload)
			}
			tt.check(t, &Instance{Marker: tt.marker, Overload: idx, Values: values})
		})
	}
}

func TestOverloadSignature(t *testing.T) {
	tests := []struct {
		o    Overload
		want string
	}{
		{Overload{}, "()"},
		{methodMarker.Overloads[0], "(int what)"},
		{Overload{Params: []Param{
			{Name: "useProps", Kind: KindBool, Default: Bool(true)},
			{Name: "path", Kind: KindString, Default: String("res://a\tb")},
		}}, `(bool useProps = true, string path = "res://a\tb")`},
	}
	for _, tt := range tests {
		if got := tt.o.Signature(); got != tt.want {
			t.Errorf("Signature() = %s, want %s", got, tt.want)
		}
	}
}

func TestApply_NoOverload(t *testing.T) {
	cases := [][]syntax.AttributeArg{
		args("1", "2", "3", "4", "5"),
		args("bogus: true"),
		args(`"a"`, "shaderScriptPath: \"b\""),
		args("true", "1"),
	}
	for _, a := range cases {
		if _, _, ok := Apply(shaderMarker, a); ok {
			t.Errorf("Apply(%+v) should fail", a)
		}
	}
	if _, _, ok := Apply(methodMarker, nil); ok {
		t.Error("required parameter must be supplied")
	}
}

func testGraph(files ...*syntax.File) *symbols.Graph {
	for _, f := range files {
		for _, c := range f.Types {
			c.File = f
		}
	}
	return symbols.Build(files, symbols.Options{
		Externals: QualifiedNames(shaderMarker, notificationMarker, methodMarker),
		Logger:    slogutil.NewDiscardLogger(),
	})
}

func TestBinder_Bind(t *testing.T) {
	pos := func(off int) syntax.Position { return syntax.Position{Path: "a.cs", Offset: off} }
	c := &syntax.Class{Kind: syntax.KindClass, Name: "Hud", Namespace: "Game",
		Attributes: []syntax.Attribute{
			{Name: "Serializable", Pos: pos(1)},
			{Name: "WhatNotification", Args: args("BaseCall.Before"), Pos: pos(2)},
		}}
	dup := &syntax.Class{Kind: syntax.KindClass, Name: "Twice", Namespace: "Game",
		Attributes: []syntax.Attribute{
			{Name: "WhatNotification", Pos: pos(3)},
			{Name: "Generator.Attributes.WhatNotificationAttribute", Pos: pos(4)},
		}}
	other := &syntax.Class{Kind: syntax.KindClass, Name: "Other", Namespace: "Game",
		Attributes: []syntax.Attribute{{Name: "WhatNotification", Pos: pos(5)}}}
	noFit := &syntax.Class{Kind: syntax.KindClass, Name: "NoFit", Namespace: "Game",
		Attributes: []syntax.Attribute{{Name: "WhatNotification", Args: args(`"x"`), Pos: pos(6)}}}

	g := testGraph(
		&syntax.File{Path: "a.cs", Usings: []string{"Generator.Attributes"}, Types: []*syntax.Class{c, dup, noFit}},
		&syntax.File{Path: "b.cs", Types: []*syntax.Class{other}},
	)
	b := NewBinder(g)

	hud, _ := g.SymbolFor(c)
	in, diags := b.Bind(hud, notificationMarker)
	if len(diags) != 0 || in == nil {
		t.Fatalf("Bind(Hud) = %v, %v", in, diags)
	}
	if in.Int("baseCall") != -1 || in.Pos() != pos(2) {
		t.Errorf("baseCall=%d pos=%v", in.Int("baseCall"), in.Pos())
	}

	twice, _ := g.SymbolFor(dup)
	in, diags = b.Bind(twice, notificationMarker)
	if in != nil || len(diags) != 1 || diags[0].Code != diag.DuplicateMarker || diags[0].Pos != pos(4) {
		t.Errorf("Bind(Twice) = %v, %+v", in, diags)
	}

	// Without the using directive the name does not resolve to the marker.
	o, _ := g.SymbolFor(other)
	if in, diags := b.Bind(o, notificationMarker); in != nil || diags != nil {
		t.Errorf("Bind(Other) = %v, %v", in, diags)
	}

	nf, _ := g.SymbolFor(noFit)
	in, diags = b.Bind(nf, notificationMarker)
	if in != nil || len(diags) != 1 || diags[0].Code != diag.NoMatchingOverload {
		t.Fatalf("Bind(NoFit) = %v, %+v", in, diags)
	}
	if msg := diags[0].Message; !strings.Contains(msg, `accepts the arguments ("x")`) || !strings.Contains(msg, "or (int baseCall = 0)") {
		t.Errorf("NoFit message = %q", msg)
	}
}

func TestBinder_BindAll(t *testing.T) {
	m := &syntax.Member{Kind: syntax.MemberMethod, Name: "OnReady", Attributes: []syntax.Attribute{
		{Name: "WhatNotificationMethod", Args: args("13")},
		{Name: "WhatNotificationMethodAttribute", Args: args("0x1F")},
		{Name: "WhatNotificationMethod"},
	}}
	c := &syntax.Class{Kind: syntax.KindClass, Name: "Hud", Namespace: "Game", Members: []*syntax.Member{m}}
	g := testGraph(&syntax.File{Path: "a.cs", Usings: []string{"Generator.Attributes"}, Types: []*syntax.Class{c}})
	b := NewBinder(g)

	ins, diags := b.BindAll(m, g.ScopeFor(c), methodMarker)
	if len(ins) != 2 {
		t.Fatalf("len(instances) = %d, want 2", len(ins))
	}
	if ins[0].Int("what") != 13 || ins[1].Int("what") != 31 {
		t.Errorf("what = %d, %d", ins[0].Int("what"), ins[1].Int("what"))
	}
	if len(diags) != 1 || diags[0].Code != diag.NoMatchingOverload {
		t.Errorf("diags = %+v", diags)
	}
}
