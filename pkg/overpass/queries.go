package overpass

// Query templates for the point sets the pipeline retrieves. Each expects a
// $bbox$ substitution and asks for computed centers on ways and relations.
const (
	// QueryHelipads selects helicopter landing facilities.
	QueryHelipads = `[out:json];(node[aeroway~"helipad|heliport"]($bbox$);way[aeroway~"helipad|heliport"]($bbox$);relation[aeroway~"helipad|heliport"]($bbox$););out center;`

	// QueryHospitals selects hospitals, used to annotate hospital helipads.
	QueryHospitals = `[out:json];(node[amenity=hospital]($bbox$);way[amenity=hospital]($bbox$);relation[amenity=hospital]($bbox$););out center;`

	// QueryOffshore selects offshore platforms, used to annotate offshore helipads.
	QueryOffshore = `[out:json];(node[man_made~"offshore_platform|floating_storage"]($bbox$);way[man_made~"offshore_platform|floating_storage"]($bbox$);relation[man_made~"offshore_platform|floating_storage"]($bbox$);node["seamark:type"="platform"]($bbox$);way["seamark:type"="platform"]($bbox$);relation["seamark:type"="platform"]($bbox$););out center;`
)
