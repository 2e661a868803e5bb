package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

// Prompt is a system instruction paired with the user instruction.
type Prompt struct {
	System string
	User   string
}

const accommodationSystemInstruction = "You are an expert IEP accommodation specialist with deep knowledge of autism support strategies, special education law, and evidence-based practices. Always respond with valid JSON only."

const reviewSystemInstruction = "You are a special education attorney and IEP compliance reviewer with deep knowledge of IDEA, Section 504 and evidence-based autism supports. Always respond with valid JSON only."

const accommodationShape = `{
  "accommodations": [
    {
      "title": "Clear, concise accommodation title",
      "description": "Detailed description of the accommodation and when to use it",
      "category": "%s",
      "implementation": "Specific steps for implementation"
    }
  ]
}`

const reviewShape = `{
  "overall_assessment": {
    "strength_score": 0,
    "compliance_score": 0,
    "summary": "Two or three sentence assessment"
  },
  "detailed_review": {
    "strengths": ["What the plan does well"],
    "concerns": ["Gaps or compliance concerns"]
  },
  "recommendations": {
    "immediate_actions": ["Concrete next steps for the IEP team"],
    "additional_accommodations": ["Accommodations worth adding"]
  }
}`

const heroPromptSuffix = `

Because this family is on the Hero plan, provide enhanced detail for every accommodation:
- Expand each implementation with who is responsible, materials needed and how progress is measured.
- Note the legal compliance considerations under IDEA and Section 504 that each accommodation supports.
- Include an implementation timeline (first week, first month, ongoing) inside the implementation text.`

const noneSpecified = "None specified"

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return noneSpecified
	}
	return strings.Join(values, ", ")
}

func textOrNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return noneSpecified
	}
	return value
}

func categoryChoices() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, "|")
}

func writeChildProfile(b *strings.Builder, child models.ChildProfile) {
	fmt.Fprintf(b, "Child Name: %s\n", child.Name)
	fmt.Fprintf(b, "Grade Level: %s\n", child.GradeLevel)
	fmt.Fprintf(b, "Diagnosis Areas: %s\n", joinOrNone(child.DiagnosisAreas))
	fmt.Fprintf(b, "Sensory Preferences: %s\n", joinOrNone(child.SensoryPreferences))
	fmt.Fprintf(b, "Behavioral Challenges: %s\n", joinOrNone(child.BehavioralChallenges))
	fmt.Fprintf(b, "Communication Method: %s\n", child.CommunicationMethod)
	fmt.Fprintf(b, "Additional Information: %s\n", textOrNone(child.AdditionalNotes))
}

// BuildAccommodationPrompt renders the generation instruction for a child at the given tier.
func BuildAccommodationPrompt(child models.ChildProfile, tier models.PlanTier) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert IEP accommodation specialist. Create %d personalized, specific, and implementable IEP accommodations for a child with the following profile:\n\n", AccommodationCount(tier))
	writeChildProfile(&b, child)
	b.WriteString(`
Generate accommodations that are:
1. Specific and actionable for teachers
2. Evidence-based and legally compliant
3. Tailored to this child's unique needs
4. Appropriate for their grade level
5. Cover different areas: academic, behavioral, sensory, communication, and environmental

Return the accommodations in this exact JSON format:
`)
	fmt.Fprintf(&b, accommodationShape, categoryChoices())
	b.WriteString("\n\nFocus on practical accommodations that address the specific challenges mentioned. Include accommodations for sensory needs, communication support, behavioral management, and academic access as relevant to this child's profile.")
	if tier == models.PlanHero {
		b.WriteString(heroPromptSuffix)
	}
	return Prompt{System: accommodationSystemInstruction, User: b.String()}
}

// BuildReviewPrompt renders the compliance review instruction for a stored session.
func BuildReviewPrompt(session *models.Session, analysis models.LegalAnalysis) Prompt {
	var b strings.Builder
	b.WriteString("Review the following IEP accommodation plan for quality and legal compliance.\n\n")
	writeChildProfile(&b, session.ChildProfile)

	b.WriteString("\nCurrent accommodations:\n")
	for i, a := range session.Accommodations {
		fmt.Fprintf(&b, "%d. [%s] %s: %s (Implementation: %s)\n", i+1, a.Category, a.Title, a.Description, a.Implementation)
	}

	if len(analysis.Risks) > 0 {
		b.WriteString("\nAutomated compliance checks flagged:\n")
		for _, r := range analysis.Risks {
			fmt.Fprintf(&b, "- (%s) %s\n", r.Level, r.Message)
		}
	}

	b.WriteString(`
Score strength and compliance from 1 to 10. Identify strengths, concerns, immediate actions for the IEP team, and additional accommodations worth adding.

Return the review in this exact JSON format:
`)
	b.WriteString(reviewShape)
	return Prompt{System: reviewSystemInstruction, User: b.String()}
}

const autismProfileSystemInstruction = "You are an autism specialist who writes warm, strengths-based student profiles that help teachers, therapists and support staff understand a child quickly. Always respond with valid JSON only."

const insightsSystemInstruction = "You are an autism specialist who distills student profiles into short, practical classroom guidance. Always respond with valid JSON only."

const autismProfileShape = `{
  "profile": "The full profile text, paragraphs separated by a blank line"
}`

const insightsShape = `{
  "topNeeds": ["three most important needs"],
  "topRecommendations": ["three most important recommendations"],
  "redFlags": ["three warning signs that the child is becoming overwhelmed"],
  "helpfulSupports": ["at least four supports that help"],
  "situationsToAvoid": ["at least four situations to avoid"],
  "classroomTips": ["at least four quick classroom tips"]
}`

// documentExcerptLimit bounds how much of each supplemental document reaches the prompt.
const documentExcerptLimit = 4000

// ProfileParagraphs is the paragraph range requested for a profile type.
func ProfileParagraphs(profileType models.AutismProfileType) string {
	if profileType == models.AutismProfileHero {
		return "5-6"
	}
	return "2-3"
}

func writeAutismInput(b *strings.Builder, in models.AutismProfileInput) {
	fmt.Fprintf(b, "Student Name: %s\n", in.StudentName)
	if in.GradeLevel != "" {
		fmt.Fprintf(b, "Grade Level: %s\n", in.GradeLevel)
	}
	fmt.Fprintf(b, "Sensory Sensitivities: %s\n", joinOrNone(in.Sensory.Selected))
	fmt.Fprintf(b, "Calming Strategies: %s\n", textOrNone(in.Sensory.CalmingStrategies))
	fmt.Fprintf(b, "Primary Communication: %s\n", textOrNone(in.Communication.PrimaryMethod))
	fmt.Fprintf(b, "Effective Communication Strategies: %s\n", textOrNone(in.Communication.EffectiveStrategies))
	fmt.Fprintf(b, "Behavioral Triggers: %s\n", joinOrNone(in.Triggers.Triggers))
	fmt.Fprintf(b, "Other Triggers: %s\n", textOrNone(in.Triggers.OtherTriggers))
	fmt.Fprintf(b, "Supports That Work at Home: %s\n", textOrNone(in.HomeSupports))
	fmt.Fprintf(b, "Family Goals: %s\n", textOrNone(in.Goals))
}

// BuildAutismProfilePrompt renders the narrative instruction. Hero profiles
// are longer and fold in strengths, learning style and uploaded documents.
func BuildAutismProfilePrompt(in models.AutismProfileInput, profileType models.AutismProfileType) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s paragraph autism profile for the student below, addressed to the educators who will work with them.\n\n", ProfileParagraphs(profileType))
	writeAutismInput(&b, in)

	if profileType == models.AutismProfileHero {
		fmt.Fprintf(&b, "Individual Strengths: %s\n", textOrNone(in.IndividualStrengths))
		fmt.Fprintf(&b, "Learning Style: %s\n", textOrNone(in.LearningStyle))
		fmt.Fprintf(&b, "Environmental Preferences: %s\n", textOrNone(in.EnvironmentalPreferences))
		if len(in.SupplementalDocuments) > 0 {
			b.WriteString("\nSupplemental documents provided by the family:\n")
			for _, doc := range in.SupplementalDocuments {
				content := doc.Content
				if len(content) > documentExcerptLimit {
					content = content[:documentExcerptLimit]
				}
				fmt.Fprintf(&b, "--- %s ---\n%s\n", doc.Name, content)
			}
			b.WriteString("\nIntegrate relevant findings from these documents and mention which document they come from.\n")
		}
		b.WriteString(`
Cover, in order: who the student is and their strengths; sensory profile and regulation; communication; triggers and how to prevent escalation; how they learn best and the ideal environment; what success looks like and how home and school can work together.
`)
	} else {
		b.WriteString(`
Cover who the student is, what helps them regulate and communicate, and what situations to handle with care.
`)
	}

	b.WriteString(`
Use plain, respectful, person-first language. Do not include headings or bullet points inside the profile text.

Return the profile in this exact JSON format:
`)
	b.WriteString(autismProfileShape)
	return Prompt{System: autismProfileSystemInstruction, User: b.String()}
}

// BuildProfileInsightsPrompt asks for the hero summary of a generated profile.
func BuildProfileInsightsPrompt(in models.AutismProfileInput, narrative string) Prompt {
	var b strings.Builder
	b.WriteString("Summarize the autism profile below into practical guidance for a classroom teacher.\n\n")
	writeAutismInput(&b, in)
	b.WriteString("\nProfile:\n")
	b.WriteString(narrative)
	b.WriteString(`

Give exactly three top needs, three top recommendations and three red flags. Give at least four helpful supports, four situations to avoid and four classroom tips. Keep every item under twenty words.

Return the summary in this exact JSON format:
`)
	b.WriteString(insightsShape)
	return Prompt{System: insightsSystemInstruction, User: b.String()}
}
