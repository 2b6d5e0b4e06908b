package resource

import "gdgen/internal/annotation"

const (
	fieldCache     = "chachePackedScene"
	fieldScenePath = "scenePath"

	fieldShaderPath    = "shaderScriptPath"
	fieldCacheMaterial = "chacheShaderMaterialProp"
	fieldCacheShader   = "chacheShaderScript"
	fieldMaterialName  = "materialMemberName"
	fieldVisualShader  = "isVisualShader"
)

// SceneMarker is [SceneScript(bool chachePackedScene = false, string scenePath = "")].
var SceneMarker = &annotation.Marker{
	Name:      "SceneScript",
	Namespace: annotation.DefaultNamespace,
	Target:    annotation.TargetClass,
	Fields: []annotation.Field{
		{Name: fieldCache, Kind: annotation.KindBool},
		{Name: fieldScenePath, Kind: annotation.KindString},
	},
	Overloads: []annotation.Overload{{
		Params: []annotation.Param{
			{Name: fieldCache, Kind: annotation.KindBool, Default: annotation.Bool(false)},
			{Name: fieldScenePath, Kind: annotation.KindString, Default: annotation.String("")},
		},
	}},
}

// ShaderMarker is [ShaderScript] with its two constructors: one taking an
// explicit shader path first, one inferring the path from the source file.
var ShaderMarker = &annotation.Marker{
	Name:      "ShaderScript",
	Namespace: annotation.DefaultNamespace,
	Target:    annotation.TargetClass,
	Fields: []annotation.Field{
		{Name: fieldShaderPath, Kind: annotation.KindString},
		{Name: fieldCacheMaterial, Kind: annotation.KindBool},
		{Name: fieldCacheShader, Kind: annotation.KindBool},
		{Name: fieldMaterialName, Kind: annotation.KindString},
		{Name: fieldVisualShader, Kind: annotation.KindBool},
	},
	Overloads: []annotation.Overload{
		{
			Params: []annotation.Param{
				{Name: fieldShaderPath, Kind: annotation.KindString},
				{Name: fieldCacheMaterial, Kind: annotation.KindBool, Default: annotation.Bool(false)},
				{Name: fieldCacheShader, Kind: annotation.KindBool, Default: annotation.Bool(false)},
				{Name: fieldMaterialName, Kind: annotation.KindString, Default: annotation.String("Material")},
			},
			Implied: map[string]annotation.Value{fieldVisualShader: *annotation.Bool(false)},
		},
		{
			Params: []annotation.Param{
				{Name: fieldCacheMaterial, Kind: annotation.KindBool, Default: annotation.Bool(false)},
				{Name: fieldCacheShader, Kind: annotation.KindBool, Default: annotation.Bool(false)},
				{Name: fieldMaterialName, Kind: annotation.KindString, Default: annotation.String("Material")},
				{Name: fieldVisualShader, Kind: annotation.KindBool, Default: annotation.Bool(false)},
			},
			Implied: map[string]annotation.Value{fieldShaderPath: *annotation.String("")},
		},
	},
}
