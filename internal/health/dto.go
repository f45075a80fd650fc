package health

// Input represents the input for the liveness endpoint
type Input struct{}

// Output represents the output for the liveness endpoint
type Output struct {
	Body Response
}

// Response is the liveness JSON body
type Response struct {
	Status    string `json:"status" example:"healthy" doc:"Liveness status of the process"`
	Timestamp string `json:"timestamp" doc:"Time the check was served"`
	Service   string `json:"service" example:"sms-sync" doc:"Service name"`
}
