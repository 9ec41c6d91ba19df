package riot

import "fmt"

// Location identifies the region and shard a session was assigned to.
// Sessions are valid for all locations; the location only selects which
// game-data hosts requests are routed to.
type Location struct {
	Region string `json:"region"`
	Shard  string `json:"shard"`
}

var (
	Europe       = Location{Region: "eu", Shard: "eu"}
	NorthAmerica = Location{Region: "na", Shard: "na"}
	LatinAmerica = Location{Region: "latam", Shard: "na"}
	Brazil       = Location{Region: "br", Shard: "na"}
	Korea        = Location{Region: "kr", Shard: "kr"}
	AsiaPacific  = Location{Region: "ap", Shard: "ap"}
	PBE          = Location{Region: "na", Shard: "pbe"}
)

// Locations lists every known location.
var Locations = []Location{Europe, NorthAmerica, LatinAmerica, Brazil, Korea, AsiaPacific, PBE}

// UnknownRegionError is returned when the server assigns a region this
// library has no location mapping for.
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q", e.Region)
}

// LocationForRegion resolves a server-assigned region to its location.
func LocationForRegion(region string) (Location, error) {
	for _, location := range Locations {
		if location.Region == region {
			return location, nil
		}
	}
	return Location{}, &UnknownRegionError{Region: region}
}
