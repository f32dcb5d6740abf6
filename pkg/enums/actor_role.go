package enums

// ActorRole is the role claim carried by access tokens.
type ActorRole string

const (
	ActorRoleGuest  ActorRole = "guest"
	ActorRoleOwner  ActorRole = "owner"
	ActorRoleAdmin  ActorRole = "admin"
	ActorRoleSystem ActorRole = "system"
)

var actorRoles = []ActorRole{ActorRoleGuest, ActorRoleOwner, ActorRoleAdmin, ActorRoleSystem}

func (v ActorRole) String() string { return string(v) }

func (v ActorRole) IsValid() bool { return member(actorRoles, v) }

func ParseActorRole(value string) (ActorRole, error) {
	return parse(actorRoles, "actor role", value)
}
