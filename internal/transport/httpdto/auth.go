package httpdto

type MagicLinkRequest struct {
	Email string `json:"email" binding:"required"`
}

type RedeemRequest struct {
	Token string `json:"token" binding:"required"`
}
