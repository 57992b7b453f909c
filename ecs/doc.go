// Package ecs is the runtime imported by code that ecsgen generates.
//
// Generated Entities types store each component in a Components map keyed by
// EntityID and satisfy EntityContainer. Structural changes decided while
// storage is being iterated go through a Control buffer that is applied once
// per tick, typically by an ApplyStage registered on a Runner.
package ecs
