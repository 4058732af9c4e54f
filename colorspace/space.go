// Package colorspace implements the viewer's OCIO-lite color management:
// named input, working and display spaces, and the transform that converts
// pixels between them. It is modeled after the OpenColorIO concept without
// the configuration language — each space is a primaries matrix pair plus a
// transfer curve.
package colorspace

// Role classifies where a space may appear in the transform.
type Role uint8

const (
	// RoleInput spaces describe camera/log footage and file encodings.
	RoleInput Role = 1 << iota
	// RoleWorking spaces are scene-linear reference spaces.
	RoleWorking
	// RoleDisplay spaces are display-referred output encodings.
	RoleDisplay
)

// Space is a named color space: primaries relative to CIE XYZ and a
// transfer curve. Decode maps encoded code values to linear light in the
// space's own primaries; Encode is its inverse.
type Space struct {
	Name    string
	Roles   Role
	ToXYZ   Matrix3
	FromXYZ Matrix3
	Decode  TransferFunc
	Encode  TransferFunc
}

// Well-known space names. Lookup accepts these exact strings; UI layers
// present them verbatim.
const (
	SpaceSRGB         = "sRGB"
	SpaceRec709       = "Rec.709"
	SpaceDisplayP3    = "Display P3"
	SpaceLinearRec709 = "Linear Rec.709"
	SpaceACEScg       = "ACEScg"
	SpaceLogC3        = "ARRI LogC3 (EI 800)"
	SpaceSLog3        = "Sony S-Log3"
)

// DefaultWorking is the fixed reference space of the pipeline.
const DefaultWorking = SpaceACEScg

var spaces = []*Space{
	{
		Name:    SpaceSRGB,
		Roles:   RoleInput | RoleDisplay,
		ToXYZ:   srgbToXYZ,
		FromXYZ: xyzToSRGB,
		Decode:  SRGBDecode,
		Encode:  SRGBEncode,
	},
	{
		// Same primaries as sRGB; only the transfer curve differs, so the
		// two displays produce visually close but not identical output.
		Name:    SpaceRec709,
		Roles:   RoleInput | RoleDisplay,
		ToXYZ:   srgbToXYZ,
		FromXYZ: xyzToSRGB,
		Decode:  Rec709Decode,
		Encode:  Rec709Encode,
	},
	{
		Name:    SpaceDisplayP3,
		Roles:   RoleDisplay,
		ToXYZ:   p3ToXYZ,
		FromXYZ: xyzToP3,
		Decode:  SRGBDecode,
		Encode:  SRGBEncode,
	},
	{
		Name:    SpaceLinearRec709,
		Roles:   RoleInput | RoleWorking,
		ToXYZ:   srgbToXYZ,
		FromXYZ: xyzToSRGB,
		Decode:  linearTransfer,
		Encode:  linearTransfer,
	},
	{
		Name:    SpaceACEScg,
		Roles:   RoleInput | RoleWorking,
		ToXYZ:   ap1ToXYZ,
		FromXYZ: xyzToAP1,
		Decode:  linearTransfer,
		Encode:  linearTransfer,
	},
	{
		Name:    SpaceLogC3,
		Roles:   RoleInput,
		ToXYZ:   alexaWGToXYZ,
		FromXYZ: xyzToAlexaWG,
		Decode:  LogC3Decode,
		Encode:  LogC3Encode,
	},
	{
		Name:    SpaceSLog3,
		Roles:   RoleInput,
		ToXYZ:   sgamut3ToXYZ,
		FromXYZ: xyzToSGamut3,
		Decode:  SLog3Decode,
		Encode:  SLog3Encode,
	},
}

// Lookup returns the named space.
func Lookup(name string) (*Space, bool) {
	for _, s := range spaces {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns the names of all spaces carrying the given role, in
// registration order. Pass 0 for every space.
func Names(role Role) []string {
	out := make([]string, 0, len(spaces))
	for _, s := range spaces {
		if role == 0 || s.Roles&role != 0 {
			out = append(out, s.Name)
		}
	}
	return out
}
