package notification

import "gdgen/internal/annotation"

// BaseCall members.
const (
	BaseCallBefore = -1
	BaseCallNone   = 0
	BaseCallAfter  = 1
)

const (
	fieldBaseCall = "baseCall"
	fieldWhat     = "what"
)

var baseCallEnum = map[string]map[string]int64{
	"BaseCall": {"Before": BaseCallBefore, "NoCall": BaseCallNone, "After": BaseCallAfter},
}

// Marker is [WhatNotification(BaseCall baseCall = BaseCall.NoCall)] with an
// int overload taking the same signed value.
var Marker = &annotation.Marker{
	Name:      "WhatNotification",
	Namespace: annotation.DefaultNamespace,
	Target:    annotation.TargetClass,
	Fields:    []annotation.Field{{Name: fieldBaseCall, Kind: annotation.KindInt}},
	Enums:     baseCallEnum,
	Overloads: []annotation.Overload{
		{Params: []annotation.Param{{Name: fieldBaseCall, Kind: annotation.KindEnum, Enum: "BaseCall", Default: annotation.EnumValue("NoCall", BaseCallNone)}}},
		{Params: []annotation.Param{{Name: fieldBaseCall, Kind: annotation.KindInt, Default: annotation.Int(BaseCallNone)}}},
	},
}

// MethodMarker is the repeatable [WhatNotificationMethod(int what)].
var MethodMarker = &annotation.Marker{
	Name:          "WhatNotificationMethod",
	Namespace:     annotation.DefaultNamespace,
	Target:        annotation.TargetMethod,
	AllowMultiple: true,
	Fields:        []annotation.Field{{Name: fieldWhat, Kind: annotation.KindInt}},
	Overloads:     []annotation.Overload{{Params: []annotation.Param{{Name: fieldWhat, Kind: annotation.KindInt}}}},
}
