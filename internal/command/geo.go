package command

import "github.com/mediocregopher/tiniredis/internal/resp"

func cmdGeoAdd(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	rest := a.PopRest()
	if len(rest) == 0 || len(rest)%3 != 0 {
		return errResponse("ERR wrong number of arguments for 'geoadd' command")
	}

	points := make(map[string][2]float64, len(rest)/3)
	for i := 0; i < len(rest); i += 3 {
		lon, perr := parseFloatArg(string(rest[i]))
		if perr != nil {
			return errResponse("ERR value is not a valid float")
		}
		lat, perr := parseFloatArg(string(rest[i+1]))
		if perr != nil {
			return errResponse("ERR value is not a valid float")
		}
		points[string(rest[i+2])] = [2]float64{lon, lat}
	}

	n, err := d.Store.GeoAdd(key, points)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdGeoPos(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	members := toStrings(a.PopRest())
	if len(members) == 0 {
		return errResponse("ERR wrong number of arguments for 'geopos' command")
	}

	vs := make([]resp.Value, len(members))
	for i, m := range members {
		lon, lat, ok, gerr := d.Store.GeoPos(key, m)
		if gerr != nil {
			return errToResponse(gerr)
		}
		if !ok {
			vs[i] = resp.NewNullArray()
			continue
		}
		vs[i] = resp.NewArray(
			resp.NewBulkStringFromString(formatScore(lon)),
			resp.NewBulkStringFromString(formatScore(lat)),
		)
	}
	return arrayResponse(vs...)
}

func cmdGeoDist(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	m1, err := a.PopString("member1")
	if err != nil {
		return errToResponse(err)
	}
	m2, err := a.PopString("member2")
	if err != nil {
		return errToResponse(err)
	}
	unit, hasUnit := a.PopOptional()
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	dist, ok, err := d.Store.GeoDist(key, m1, m2)
	if err != nil {
		return errToResponse(err)
	}
	if !ok {
		return nullBulkResponse()
	}
	if hasUnit {
		dist = convertGeoUnit(dist, string(unit))
	}
	return bulkStringResponse(formatScore(dist))
}

// convertGeoUnit converts a meters distance to the requested GEODIST unit
// (m, km, mi, ft); an unrecognized unit is treated as meters.
func convertGeoUnit(meters float64, unit string) float64 {
	switch unit {
	case "km":
		return meters / 1000
	case "mi":
		return meters / 1609.34
	case "ft":
		return meters * 3.28084
	default:
		return meters
	}
}

func cmdGeoSearch(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	lon, err := a.PopFloat("longitude")
	if err != nil {
		return errToResponse(err)
	}
	lat, err := a.PopFloat("latitude")
	if err != nil {
		return errToResponse(err)
	}
	radius, err := a.PopFloat("radius")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	results, err := d.Store.GeoSearch(key, lon, lat, radius)
	if err != nil {
		return errToResponse(err)
	}
	vs := make([]resp.Value, len(results))
	for i, r := range results {
		vs[i] = resp.NewArray(
			resp.NewBulkStringFromString(r.Member),
			resp.NewBulkStringFromString(formatScore(r.DistMeters)),
		)
	}
	return arrayResponse(vs...)
}
