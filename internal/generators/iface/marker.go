package iface

import "gdgen/internal/annotation"

// Marker field names.
const (
	fieldUseProps          = "useProps"
	fieldUseMethods        = "useMethods"
	fieldUseEvents         = "useEvents"
	fieldInheritInterfaces = "inheritInterfaces"
	fieldInheritGenerated  = "inheritGeneratedInterfaces"
)

// Marker is [MakeInterface(bool useProps = true, bool useMethods = false,
// bool useEvents = false, bool inheritInterfaces = false,
// bool inheritGeneratedInterfaces = true)].
var Marker = &annotation.Marker{
	Name:      "MakeInterface",
	Namespace: annotation.DefaultNamespace,
	Target:    annotation.TargetClass,
	Fields: []annotation.Field{
		{Name: fieldUseProps, Kind: annotation.KindBool},
		{Name: fieldUseMethods, Kind: annotation.KindBool},
		{Name: fieldUseEvents, Kind: annotation.KindBool},
		{Name: fieldInheritInterfaces, Kind: annotation.KindBool},
		{Name: fieldInheritGenerated, Kind: annotation.KindBool},
	},
	Overloads: []annotation.Overload{{
		Params: []annotation.Param{
			{Name: fieldUseProps, Kind: annotation.KindBool, Default: annotation.Bool(true)},
			{Name: fieldUseMethods, Kind: annotation.KindBool, Default: annotation.Bool(false)},
			{Name: fieldUseEvents, Kind: annotation.KindBool, Default: annotation.Bool(false)},
			{Name: fieldInheritInterfaces, Kind: annotation.KindBool, Default: annotation.Bool(false)},
			{Name: fieldInheritGenerated, Kind: annotation.KindBool, Default: annotation.Bool(true)},
		},
	}},
}
