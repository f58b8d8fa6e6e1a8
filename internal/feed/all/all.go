// Package all imports every feed provider for side-effect registration.
//
// Import this package from your main to make all providers selectable:
//
//	import _ "github.com/otso2008/OddsBot/internal/feed/all"
package all

import (
	_ "github.com/otso2008/OddsBot/internal/feed/coolbet"
	_ "github.com/otso2008/OddsBot/internal/feed/kambi"
	_ "github.com/otso2008/OddsBot/internal/feed/oddsapi"
)
