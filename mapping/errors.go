package mapping

import "errors"

var errNoButtonUsageRange = errors.New("mapping: no button usage range in report descriptor")
