package domain

import (
	"encoding/json"
)

// Grant — разрешение на анонимный просмотр одной записи до истечения срока.
// JSON-имена полей совпадают со схемой хранимого документа: id/expires/key.
type Grant struct {
	ContentID string `json:"id"`
	ExpiresAt int64  `json:"expires"`
	Token     string `json:"key"`
}

func (g Grant) Expired(now int64) bool {
	return g.ExpiresAt < now
}

// OwnerSettings — запись одного владельца в общем документе. Кроме списка
// shared в записи могут находиться другие поля владельца, они сохраняются
// без изменений при перезаписи документа.
type OwnerSettings struct {
	Shared []Grant

	extra map[string]json.RawMessage
}

func (s *OwnerSettings) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["shared"]; ok {
		var shared []Grant
		// Повреждённый список считаем пустым, документ не должен ломать загрузку
		if err := json.Unmarshal(raw, &shared); err == nil {
			s.Shared = shared
		}
		delete(fields, "shared")
	}

	if len(fields) > 0 {
		s.extra = fields
	}
	return nil
}

func (s *OwnerSettings) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(s.extra)+1)
	for k, v := range s.extra {
		fields[k] = v
	}

	shared := s.Shared
	if shared == nil {
		shared = []Grant{}
	}
	raw, err := json.Marshal(shared)
	if err != nil {
		return nil, err
	}
	fields["shared"] = raw

	return json.Marshal(fields)
}

// Clone возвращает копию записи с независимым списком shared.
func (s *OwnerSettings) Clone() *OwnerSettings {
	cp := &OwnerSettings{extra: s.extra}
	if s.Shared != nil {
		cp.Shared = make([]Grant, len(s.Shared))
		copy(cp.Shared, s.Shared)
	}
	return cp
}

// OwnerGrantSet — весь хранимый документ: владелец -> его запись.
type OwnerGrantSet map[string]*OwnerSettings

// Grants возвращает список выданных доступов владельца.
func (set OwnerGrantSet) Grants(ownerID string) []Grant {
	settings, ok := set[ownerID]
	if !ok || settings == nil {
		return nil
	}
	return settings.Shared
}

// FindGrant ищет действующий доступ по записи и токену среди всех владельцев.
func (set OwnerGrantSet) FindGrant(contentID, token string) (Grant, bool) {
	if token == "" {
		return Grant{}, false
	}
	for _, settings := range set {
		if settings == nil {
			continue
		}
		for _, grant := range settings.Shared {
			if grant.ContentID == contentID && grant.Token == token {
				return grant, true
			}
		}
	}
	return Grant{}, false
}
