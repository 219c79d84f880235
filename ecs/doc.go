// Package ecs adapts a github.com/yohamta/donburi world to a
// github.com/geomarker/spritelayer Layer.
//
// [Reconciler] walks every entity carrying [SpriteComponent] and reconciles
// them into a Layer with spritelayer.MutateSprites, so the ECS world stays
// the single authoritative source of truth for which sprites exist.
// [NewDonburiEventStore] is the reverse direction: it republishes Layer
// pointer events into the world as a typed donburi event, so ECS systems can
// subscribe to [InteractionEventType] instead of registering a Layer
// listener directly.
//
// Usage:
//
//	recon := ecs.NewReconciler(world)
//	added, modified, removed := recon.Sync(layer)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
