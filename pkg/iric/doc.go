// Package iric is the procedural interface to case files. Callers hold a
// FileID returned by Registry.Open and address zones by their integer id;
// mesh objects never cross the boundary.
//
//	reg := iric.NewRegistry()
//	fid, _ := reg.Create(ctx, "case.gs")
//	zid, _ := reg.WriteGrid2dCoords(fid, 3, 2, x, y)
//	_, _ = reg.WriteSolTime(fid, 0)
//	_ = reg.WriteSolReal(fid, zid, mesh.Node, "Depth", depth)
//	_ = reg.Close(fid)
//
// Every call is traced at debug level and failures are logged once with the
// call name.
package iric
