package output

import "github.com/itohio/adcmon/pkg/convert"

// Output receives every converted scan.
type Output interface {
	// Start is called once before the first Publish.
	Start() error
	Publish(convert.Reading) error
	Close() error
}
