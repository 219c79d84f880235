// Package spritelayer is a sprite rendering and animation engine for large,
// dynamic populations of geographically anchored 2D sprites drawn on top of
// an external map engine.
//
// A [Layer] owns sprite and image state, an atlas of packed bitmaps, and a
// hit-test index. Each call to [Layer.Frame] advances interpolated location,
// rotation, opacity, and offset channels on a pausable virtual clock,
// re-projects every visible image (as a screen-facing billboard or a quad
// laid flat on the map surface), and emits one batched vertex stream plus
// refreshed hit-test geometry.
//
// # Quick start
//
//	layer := spritelayer.NewLayer(spritelayer.LayerOptions{}, nil)
//	layer.RegisterImage("pin", bitmap, nil, nil)
//	layer.AddSprite("unit-1", spritelayer.SpriteInit{
//		Enabled:  true,
//		Location: spritelayer.Location{Lng: -122.4, Lat: 37.8},
//	})
//	layer.AddSpriteImage("unit-1", 0, 0, spritelayer.ImageInit{ImageID: "pin"})
//
//	// once per host render tick:
//	layer.DrainQueues()
//	batch, err := layer.Frame(hostMap, projectionHost, nowMs)
//	graphicsContext.UploadVertexBatch(batch)
//
// The host supplies the map projection ([ProjectionHost]), the clip-space
// transform, drawing-buffer size and pixel ratio, and drives visibility and
// pointer events. This package performs no GPU calls, no font rasterisation,
// and no network I/O — those are external collaborators (see [HostMap],
// [GraphicsContext], [GlyphRasterizer]).
//
// # Key components
//
// Image registration and atlas packing ([Layer.RegisterImage],
// [Layer.RegisterTextGlyph]) feed a shelf-packed texture atlas drained
// cooperatively on host ticks: there are no goroutines anywhere in this
// package, only budgeted work queued against the host's render loop. Sprite
// mutation ([Layer.AddSprite], [Layer.UpdateSprite], [Layer.MutateSprites])
// goes through an origin-reference validator that rejects cycles before any
// state changes. Hit testing ([Layer.ResolveHitTest]) and pointer dispatch
// ([Layer.DispatchPointerEvent]) work off the previous frame's drawn
// geometry, never the in-progress one.
//
// Per-channel animation (location, rotation, opacity, offset) runs through a
// generic [Channel], whose named easing curves are evaluated by [gween]'s
// ease package. An optional ECS reconciliation adapter lives in the sibling
// module spritelayer/ecs, built on [donburi].
//
// [gween]: https://github.com/tanema/gween
// [donburi]: https://github.com/yohamta/donburi
package spritelayer
