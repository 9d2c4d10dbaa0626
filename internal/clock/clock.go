package clock

import "time"

// NowFunc supplies the current time. Tests override it to obtain
// deterministic timestamps.
var NowFunc = time.Now

// Now returns the current time via NowFunc.
func Now() time.Time { return NowFunc() }
