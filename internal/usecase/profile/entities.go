package profile

// Identity is what a verified bearer token says about its holder.
type Identity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

type SelfUpdateInput struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

type AdminUpdateInput struct {
	Role           *string
	Department     *string
	RegisterNumber *string
	TutorID        *string
}
