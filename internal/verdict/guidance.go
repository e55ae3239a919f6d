package verdict

const (
	disclaimer             = "This AI diagnosis is for guidance only. Always consult with agricultural experts for critical decisions."
	unidentifiedDisclaimer = "This image does not appear to be a tomato leaf or the disease is not clearly identifiable."
)

var unidentifiedSteps = []string{
	"Image not recognized as a tomato leaf",
	"Please upload a clear image of a tomato leaf",
	"Ensure the image shows the leaf clearly",
	"Try a different angle or lighting",
}

var tierSteps = map[Tier][]string{
	TierHigh: {
		"High confidence prediction - result is reliable",
		"Follow the recommended treatment plan",
		"Monitor plant progress after treatment",
		"Re-test if symptoms persist",
	},
	TierMedium: {
		"Moderate confidence - prediction is likely correct",
		"Review the detailed analysis below",
		"Consider the recommended treatment",
		"Get expert confirmation for critical cases",
	},
	TierLow: {
		"Low confidence prediction - results may be unreliable",
		"Try taking another photo with better lighting",
		"Consult with a local agricultural expert",
		"Check for multiple disease symptoms",
	},
}

// DefaultLabels is the tomato label set in training index order.
var DefaultLabels = []string{
	"Bacterial Spot",
	"Early Blight",
	"Late Blight",
	"Leaf Mold",
	"Septoria Leaf Spot",
	"Spider Mites",
	"Target Spot",
	"Yellow Leaf Curl Virus",
	"Mosaic Virus",
	"Healthy",
}

var diseaseInfo = map[string]DiseaseInfo{
	"Bacterial Spot": {
		Treatment:  "Apply copper-based fungicides",
		Prevention: "Improve air circulation, avoid overhead watering",
	},
	"Early Blight": {
		Treatment:  "Remove infected leaves, apply fungicide",
		Prevention: "Crop rotation, proper spacing",
	},
	"Late Blight": {
		Treatment:  "Apply systemic fungicides immediately",
		Prevention: "Avoid overhead watering, improve drainage",
	},
	"Leaf Mold": {
		Treatment:  "Improve ventilation, apply fungicide",
		Prevention: "Reduce humidity, proper spacing",
	},
	"Septoria Leaf Spot": {
		Treatment:  "Remove infected leaves, apply fungicide",
		Prevention: "Avoid overhead watering, crop rotation",
	},
	"Spider Mites": {
		Treatment:  "Apply miticide, increase humidity",
		Prevention: "Regular monitoring, beneficial insects",
	},
	"Target Spot": {
		Treatment:  "Apply fungicide, remove infected leaves",
		Prevention: "Proper spacing, good air circulation",
	},
	"Yellow Leaf Curl Virus": {
		Treatment:  "Remove infected plants, control whiteflies",
		Prevention: "Use resistant varieties, control vectors",
	},
	"Mosaic Virus": {
		Treatment:  "Remove infected plants immediately",
		Prevention: "Use virus-free seeds, control aphids",
	},
	"Healthy": {
		Treatment:  "Continue current care practices",
		Prevention: "Maintain good growing conditions",
	},
}

// LookupDiseaseInfo returns the treatment and prevention text for label.
func LookupDiseaseInfo(label string) (DiseaseInfo, bool) {
	info, ok := diseaseInfo[label]
	return info, ok
}

func guidanceFor(label string, tier Tier, threshold float64) Guidance {
	g := Guidance{
		Disclaimer:          disclaimer,
		ConfidenceThreshold: threshold,
		NextSteps:           append([]string(nil), tierSteps[tier]...),
	}
	if info, ok := LookupDiseaseInfo(label); ok {
		g.DiseaseInfo = &info
	}
	return g
}

func unidentifiedGuidance(threshold float64) Guidance {
	return Guidance{
		Disclaimer:          unidentifiedDisclaimer,
		ConfidenceThreshold: threshold,
		NextSteps:           append([]string(nil), unidentifiedSteps...),
	}
}
