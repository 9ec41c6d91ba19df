package riot

import (
	"encoding/base64"
	"encoding/json"
)

// PlatformInfo describes the client platform the API expects to be reported
// in the X-Riot-ClientPlatform header.
type PlatformInfo struct {
	Type      string `json:"platformType"`
	OS        string `json:"platformOS"`
	OSVersion string `json:"platformOSVersion"`
	Chipset   string `json:"platformChipset"`
}

// DefaultPlatform is a platform the API is known to accept.
var DefaultPlatform = PlatformInfo{
	Type:      "PC",
	OS:        "Windows",
	OSVersion: "10.0.19042.1.256.64bit",
	Chipset:   "Unknown",
}

// Encoded returns the base64 JSON form used as a header value.
func (p PlatformInfo) Encoded() string {
	raw, err := json.Marshal(p)
	if err != nil {
		// PlatformInfo is a flat struct of strings; this cannot fail.
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}
