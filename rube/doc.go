// Package rube loads scenes exported by the R.U.B.E. physics editor into a
// Chipmunk2D world ([github.com/jakecoffman/cp/v2]).
//
// A scene document carries gravity, a list of bodies (each with its
// fixtures) and a list of joints that reference bodies by index or id:
//
//	doc, err := rube.ParseDocument(data)
//	if err != nil {
//		return err
//	}
//	world, ok := rube.CreateWorld(doc)
//	if !ok {
//		// some body lacked a type; the world still holds everything else
//	}
//	world.Step(1.0 / 60)
//
// Loading is best effort. Malformed optional fields fall back to their
// defaults, and a bad fixture or joint is logged and skipped without
// aborting the rest of the scene. The returned flag is false only when a
// body descriptor has no type.
//
// Joints are expressed with the engine's constraint set, so a single RUBE
// joint may own several constraints (a revolute joint with a limit and a
// motor is a pivot, a rotary limit and a simple motor).
package rube
