package models

const imageHost = "https://acme-s3-images.s3.ap-southeast-2.amazonaws.com"

type User struct {
	UserId            *int   `json:"userId,omitempty"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	ProfilePictureUrl string `json:"profilePictureUrl,omitempty"`
	CognitoId         string `json:"cognitoId,omitempty"`
	TeamId            *int   `json:"teamId,omitempty"`
}

type Team struct {
	Id                   int    `json:"id"`
	Name                 string `json:"name"`
	ProductOwnerUserId   *int   `json:"productOwnerUserId,omitempty"`
	ProjectManagerUserId *int   `json:"projectManagerUserId,omitempty"`
}

// Identity is what the external identity provider knows about the signed-in user.
type Identity struct {
	Username string `json:"username"`
	UserId   string `json:"userId"`
}

type AuthUser struct {
	User        Identity `json:"user"`
	UserSub     string   `json:"userSub"`
	UserDetails *User    `json:"userDetails,omitempty"`
}

// ImageURL resolves an asset name stored on an entity to the object-storage host.
func ImageURL(name string) string {
	if name == "" {
		return ""
	}
	return imageHost + "/" + name
}
