package token

// Privilege identifies one timed capability inside an RTC service scope.
type Privilege uint16

const (
	PrivJoinChannel  Privilege = 1
	PrivPublishAudio Privilege = 2
	PrivPublishVideo Privilege = 3
	PrivPublishData  Privilege = 4
)

const serviceTypeRTC uint16 = 1

type privilegeGrant struct {
	code     Privilege
	expireAt uint32
}

// ServiceRTC scopes a token to one channel and one uid and carries its
// privilege grants. Grant order is insertion order and must stay byte-stable
// so that identical inputs sign identically.
type ServiceRTC struct {
	ChannelName string
	UID         string

	grants []privilegeGrant
}

func NewServiceRTC(channel, uid string) *ServiceRTC {
	return &ServiceRTC{ChannelName: channel, UID: uid}
}

// AddPrivilege grants code until expireAt (unix seconds). Re-adding a code
// updates the existing grant in place; codes stay unique.
func (s *ServiceRTC) AddPrivilege(code Privilege, expireAt uint32) {
	for i := range s.grants {
		if s.grants[i].code == code {
			s.grants[i].expireAt = expireAt
			return
		}
	}
	s.grants = append(s.grants, privilegeGrant{code: code, expireAt: expireAt})
}

// Pack appends the service body: channel, uid, then the grant list.
func (s *ServiceRTC) Pack(w *ByteWriter) error {
	if err := w.WriteString(s.ChannelName); err != nil {
		return err
	}
	if err := w.WriteString(s.UID); err != nil {
		return err
	}
	w.WriteUint16(uint16(len(s.grants)))
	for _, g := range s.grants {
		w.WriteUint16(uint16(g.code))
		w.WriteUint32(g.expireAt)
	}
	return nil
}
