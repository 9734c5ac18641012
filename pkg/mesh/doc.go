// Package mesh maps the mesh and solution data model onto the group/array
// tree of a store.Container.
//
// Layout of a case file:
//
//	/Base<dim>D                               one base per dimensionality
//	/Base<dim>D/<zone>/ZoneType               int32[1], 0 structured, 1 unstructured
//	/Base<dim>D/<zone>/ZoneSize               node extents then cell extents, or [nodes, elements]
//	/Base<dim>D/<zone>/GridCoordinates/CoordinateX|Y|Z
//	/Base<dim>D/<zone>/Elements/CellType      int32[1], 1 triangle, 2 line
//	/Base<dim>D/<zone>/Elements/Connectivity  flat node indices, stored as given
//	/Base<dim>D/<zone>/<Domain>Attributes/<field>
//	/Base<dim>D/<zone>/<Domain>Attributes/<field>_<dim>      functional dimension values
//	/Base<dim>D/<zone>/<Domain>Attributes/<field>_<dim>_<i>  functional data, i from 1
//	/Base<dim>D/<zone>/Solution<step>/...     per-step attribute groups
//	/Base<dim>D/<zone>/Solution<step>/ParticleGroupImage/<group>_coordinateX|_coordinateY|_size|_angle
//	/Iterative/TimeValues                     float64[steps]
//
// Every failure is an *Error carrying a Code; use errors.Is with the Err*
// sentinels or CodeOf to classify it.
package mesh
