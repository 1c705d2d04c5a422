package models

// Equipment is a registered point-of-sale terminal. Records are provisioned
// by an external process; the gateway only ever reads them.
type Equipment struct {
	ID        int64
	CompanyID int64
	Serial    string
	MAC       string
	IP        string
	Port      string
	Token     string
	Password  string
	// Authorized and Active are stored as '0'/'1' strings in the equipos
	// table and parsed into booleans by the repository.
	Authorized bool
	Active     bool
}

// EquipmentView is the public projection of an Equipment record. Token and
// password never cross this boundary.
type EquipmentView struct {
	ID     int64  `json:"id"`
	Serial string `json:"serial"`
	MAC    string `json:"mac"`
	IP     string `json:"ip"`
	Port   string `json:"port"`
}

func (e *Equipment) View() *EquipmentView {
	return &EquipmentView{
		ID:     e.ID,
		Serial: e.Serial,
		MAC:    e.MAC,
		IP:     e.IP,
		Port:   e.Port,
	}
}

// Headers identify the originating terminal to the upstream payment service.
type Headers struct {
	StationCode   string // x-station-code, the equipment serial
	EquipmentCode string // x-equipment-code, the equipment MAC
}
