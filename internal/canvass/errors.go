package canvass

import "github.com/rotisserie/eris"

var errNoGeocoder = eris.New("canvass: no geocoder configured")
