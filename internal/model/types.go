package model

import (
	"strconv"
	"time"
)

// AlarmStatus summarises the alarm list of a device.
type AlarmStatus string

const (
	AlarmNormal  AlarmStatus = "normal"
	AlarmWarning AlarmStatus = "warning"
	AlarmError   AlarmStatus = "error"
)

// Alarm is a single alarm entry as reported by the devices endpoint.
type Alarm struct {
	Kind        string `json:"type"`
	ErrorCode   string `json:"error_code,omitempty"`
	DefaultText string `json:"default_text,omitempty"`
}

// Component is one controllable or reportable attribute of a device.
// ReportedValue and Timestamp are promoted from the raw payload; Raw keeps
// every source field verbatim so nothing is lost across API revisions.
type Component struct {
	ID            string         `json:"id"`
	ReportedValue any            `json:"reported_value"`
	Timestamp     any            `json:"ts,omitempty"`
	Raw           map[string]any `json:"raw,omitempty"`
}

// Device is the normalized record for one pool device. It is replaced
// wholesale on each successful devices fetch, never mutated in place.
type Device struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number,omitempty"`
	Type         string `json:"type,omitempty"`
	Status       string `json:"status,omitempty"`
	Model        string `json:"model,omitempty"`
	SKU          string `json:"sku,omitempty"`
	ThingType    string `json:"thing_type,omitempty"`
	Firmware     string `json:"firmware,omitempty"`
	PoolID       string `json:"pool_id,omitempty"`

	ConnectionStatus      string `json:"connection_status"`
	SessionID             string `json:"session_id,omitempty"`
	ConnectivityTimestamp string `json:"connectivity_timestamp,omitempty"`
	FirstConnection       string `json:"first_connection,omitempty"`

	Alarms       []Alarm     `json:"alarms,omitempty"`
	AlarmStatus  AlarmStatus `json:"alarm_status"`
	AlarmCount   int         `json:"alarm_count"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`

	Components map[string]Component `json:"components,omitempty"`
}

// UserPool describes the account's access to one pool.
type UserPool struct {
	PoolID            string `json:"pool_id"`
	AccessLevel       any    `json:"access_level,omitempty"`
	Permissions       any    `json:"permissions,omitempty"`
	Role              string `json:"role,omitempty"`
	Owner             any    `json:"owner,omitempty"`
	AccessGrantedDate string `json:"access_granted_date,omitempty"`
	LastAccessed      string `json:"last_accessed,omitempty"`
}

// UIConfig is the per-device UI configuration with the sections the
// presentation layer cares about promoted to fields.
type UIConfig struct {
	UIConfig             map[string]any `json:"ui_config,omitempty"`
	Features             map[string]any `json:"features,omitempty"`
	Controls             map[string]any `json:"controls,omitempty"`
	DisplayOptions       map[string]any `json:"display_options,omitempty"`
	Language             string         `json:"language"`
	Theme                string         `json:"theme"`
	Notifications        map[string]any `json:"notifications,omitempty"`
	AutomationRules      map[string]any `json:"automation_rules,omitempty"`
	ScheduleSettings     map[string]any `json:"schedule_settings,omitempty"`
	MaintenanceReminders map[string]any `json:"maintenance_reminders,omitempty"`
	EnergySettings       map[string]any `json:"energy_settings,omitempty"`
}

// ErrorInfo is the derived error record for the snapshot, computed once per
// refresh cycle from the device map.
type ErrorInfo struct {
	ErrorCode        string      `json:"error_code,omitempty"`
	ErrorMessage     string      `json:"error_message,omitempty"`
	AlarmStatus      AlarmStatus `json:"alarm_status,omitempty"`
	AlarmCount       int         `json:"alarm_count"`
	DeviceID         string      `json:"device_id,omitempty"`
	Timestamp        time.Time   `json:"timestamp"`
	ErrorDescription string      `json:"error_description,omitempty"`
	Alarms           []Alarm     `json:"alarms,omitempty"`
}

// ConnectionInfo is the per-device connectivity view.
type ConnectionInfo struct {
	ConnectionStatus      string `json:"connection_status"`
	SessionID             string `json:"session_id,omitempty"`
	ConnectivityTimestamp string `json:"connectivity_timestamp,omitempty"`
	FirstConnection       string `json:"first_connection,omitempty"`
}

// APIInfo reports rate-limit accounting and scheduling state.
type APIInfo struct {
	RateLimit         int        `json:"rate_limit"`
	CallsInLastMinute int        `json:"api_calls_in_last_minute"`
	LastAPICall       *time.Time `json:"last_api_call,omitempty"`
	NextUpdate        *time.Time `json:"next_update,omitempty"`
}

// Snapshot is the coordinator's complete normalized view of all fetched
// resources. It is immutable once published; a new snapshot replaces the old
// one atomically at the end of each refresh cycle.
type Snapshot struct {
	Consumer    map[string]any                  `json:"consumer,omitempty"`
	Devices     map[string]Device               `json:"devices,omitempty"`
	UserProfile map[string]any                  `json:"user_profile,omitempty"`
	PoolStatus  map[string]any                  `json:"pool_status,omitempty"`
	UserPools   map[string]UserPool             `json:"user_pools,omitempty"`
	Components  map[string]map[string]Component `json:"device_components,omitempty"`
	UIConfig    map[string]UIConfig             `json:"device_uiconfig,omitempty"`
	ErrorInfo   *ErrorInfo                      `json:"error_information,omitempty"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// Device returns the normalized device record for the given id.
func (s *Snapshot) Device(id string) (Device, bool) {
	d, ok := s.Devices[id]
	return d, ok
}

// ComponentsFor returns the last-fetched component map for a device.
func (s *Snapshot) ComponentsFor(deviceID string) map[string]Component {
	return s.Components[deviceID]
}

// Component looks up one component, tolerating numeric or string id forms.
func (s *Snapshot) Component(deviceID, componentID string) (Component, bool) {
	comps := s.Components[deviceID]
	if comps == nil {
		return Component{}, false
	}
	if c, ok := comps[componentID]; ok {
		return c, true
	}
	// A numeric id may arrive as "019" or similar; retry in canonical form.
	if n, err := strconv.ParseInt(componentID, 10, 64); err == nil {
		if c, ok := comps[strconv.FormatInt(n, 10)]; ok {
			return c, true
		}
	}
	return Component{}, false
}

// DeviceBySerial finds a device by serial number, if any device carries one.
func (s *Snapshot) DeviceBySerial(serial string) (Device, bool) {
	if serial == "" {
		return Device{}, false
	}
	for _, d := range s.Devices {
		if d.SerialNumber == serial {
			return d, true
		}
	}
	return Device{}, false
}
