package pixel

import "strings"

// Format identifies the pixel layout of a raw camera payload. The names
// follow the GenICam pixel format naming convention, which is what GenTL
// producers report.
type Format string

// Formats understood by Normalize. Anything else, including vendor-custom
// formats, normalizes to ErrUnsupported.
const (
	FormatMono8  Format = "Mono8"
	FormatMono10 Format = "Mono10"
	FormatMono12 Format = "Mono12"
	FormatMono14 Format = "Mono14"
	FormatMono16 Format = "Mono16"

	FormatBayerRG8  Format = "BayerRG8"
	FormatBayerRG10 Format = "BayerRG10"
	FormatBayerRG12 Format = "BayerRG12"
	FormatBayerRG16 Format = "BayerRG16"
	FormatBayerGR8  Format = "BayerGR8"
	FormatBayerGR10 Format = "BayerGR10"
	FormatBayerGR12 Format = "BayerGR12"
	FormatBayerGR16 Format = "BayerGR16"
	FormatBayerGB8  Format = "BayerGB8"
	FormatBayerGB10 Format = "BayerGB10"
	FormatBayerGB12 Format = "BayerGB12"
	FormatBayerGB16 Format = "BayerGB16"
	FormatBayerBG8  Format = "BayerBG8"
	FormatBayerBG10 Format = "BayerBG10"
	FormatBayerBG12 Format = "BayerBG12"
	FormatBayerBG16 Format = "BayerBG16"

	FormatRGB8  Format = "RGB8"
	FormatRGB10 Format = "RGB10"
	FormatRGB12 Format = "RGB12"
	FormatRGB16 Format = "RGB16"
	FormatBGR8  Format = "BGR8"
	FormatBGR10 Format = "BGR10"
	FormatBGR12 Format = "BGR12"
	FormatBGR16 Format = "BGR16"

	FormatRGBA8 Format = "RGBa8"
	FormatBGRA8 Format = "BGRa8"
)

type sampleLocation int

const (
	locationUnknown sampleLocation = iota
	locationMono
	locationBayer
	locationRGB
	locationBGR
	locationRGBA
	locationBGRA
)

type formatInfo struct {
	bitsPerSample int
	location      sampleLocation
	components    int
}

var formatTable = map[Format]formatInfo{
	FormatMono8:  {8, locationMono, 1},
	FormatMono10: {10, locationMono, 1},
	FormatMono12: {12, locationMono, 1},
	FormatMono14: {14, locationMono, 1},
	FormatMono16: {16, locationMono, 1},

	FormatBayerRG8:  {8, locationBayer, 1},
	FormatBayerRG10: {10, locationBayer, 1},
	FormatBayerRG12: {12, locationBayer, 1},
	FormatBayerRG16: {16, locationBayer, 1},
	FormatBayerGR8:  {8, locationBayer, 1},
	FormatBayerGR10: {10, locationBayer, 1},
	FormatBayerGR12: {12, locationBayer, 1},
	FormatBayerGR16: {16, locationBayer, 1},
	FormatBayerGB8:  {8, locationBayer, 1},
	FormatBayerGB10: {10, locationBayer, 1},
	FormatBayerGB12: {12, locationBayer, 1},
	FormatBayerGB16: {16, locationBayer, 1},
	FormatBayerBG8:  {8, locationBayer, 1},
	FormatBayerBG10: {10, locationBayer, 1},
	FormatBayerBG12: {12, locationBayer, 1},
	FormatBayerBG16: {16, locationBayer, 1},

	FormatRGB8:  {8, locationRGB, 3},
	FormatRGB10: {10, locationRGB, 3},
	FormatRGB12: {12, locationRGB, 3},
	FormatRGB16: {16, locationRGB, 3},
	FormatBGR8:  {8, locationBGR, 3},
	FormatBGR10: {10, locationBGR, 3},
	FormatBGR12: {12, locationBGR, 3},
	FormatBGR16: {16, locationBGR, 3},

	FormatRGBA8: {8, locationRGBA, 4},
	FormatBGRA8: {8, locationBGRA, 4},
}

// IsCustom reports whether the format is a vendor-custom one. GenICam
// reserves the "Custom" prefix for formats outside the standard namespace.
func (f Format) IsCustom() bool {
	return strings.HasPrefix(string(f), "Custom")
}

// BitsPerSample returns the number of significant bits in a single color
// sample of the format, or false if the format is not recognized.
func (f Format) BitsPerSample() (int, bool) {
	info, ok := formatTable[f]
	return info.bitsPerSample, ok
}

// Components returns how many samples make up one pixel of the format, or
// false if the format is not recognized.
func (f Format) Components() (int, bool) {
	info, ok := formatTable[f]
	return info.components, ok
}

func (f Format) sampleLocation() sampleLocation {
	return formatTable[f].location
}
