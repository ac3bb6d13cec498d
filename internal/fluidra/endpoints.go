package fluidra

import "net/url"

// Endpoint paths, relative to the base URL. Device and pool ids come from
// API responses and are escaped before interpolation.

func ConsumerPath() string {
	return "/mobile/consumers/me"
}

func DevicesPath() string {
	return "/generic/devices"
}

func UserProfilePath() string {
	return "/generic/users/me"
}

func UserPoolsPath() string {
	return "/generic/users/me/pools"
}

func PoolStatusPath(poolID string) string {
	return "/generic/pools/" + url.PathEscape(poolID) + "/status"
}

func DeviceComponentsPath(deviceID string) string {
	return "/generic/devices/" + url.PathEscape(deviceID) + "/components?deviceType=connected"
}

func DeviceUIConfigPath(deviceID string) string {
	return "/generic/devices/" + url.PathEscape(deviceID) + "/uiconfig?appId=iaq&deviceType=connected"
}

func SetComponentValuePath(deviceID, componentID string) string {
	return "/generic/devices/" + url.PathEscape(deviceID) + "/components/" + url.PathEscape(componentID) + "?deviceType=connected"
}
