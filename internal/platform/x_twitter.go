package platform

type Twitter struct{}

func init() {
	Register(&Twitter{})
}

func (p *Twitter) GetName() string {
	return "x-twitter"
}

func (p *Twitter) GetMaxDuration() int {
	return 140
}

func (p *Twitter) GetMaxFileSizeMB() int {
	return 512
}

func (p *Twitter) GetMaxHeight() int {
	return 1200
}

func (p *Twitter) GetAudioCodec() string {
	return "aac"
}

func (p *Twitter) GetAudioBitrate() string {
	return "128k"
}

func (p *Twitter) GetOutputFormat() string {
	return "mp4"
}
