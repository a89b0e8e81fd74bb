package mqtt

import (
	"github.com/denisbrodbeck/machineid"
)

// AppID scopes the machine ID so it isn't exposed as is.
const AppID = "epaper"

// DeviceID returns the ID naming this machine's display in topics.
func DeviceID() (string, error) {
	return machineid.ProtectedID(AppID)
}
