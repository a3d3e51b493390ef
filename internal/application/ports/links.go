package ports

type LinkBuilder interface {
	ShareURL(shareID string) string
}
