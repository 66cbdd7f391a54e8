package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── OpenAI prompt constants ────────────────────────────────────────── */

const coachSystemPrompt = `You are a certified fitness trainer and nutritionist with expertise in personalized workout plans and nutrition advice. Provide practical, safe, and scientifically-backed recommendations. Keep responses concise and actionable. Return only valid JSON, no explanation.`

// chatUnavailableMessage is returned when the model can't be reached. The
// request still succeeds; coaching degrades rather than errors.
const chatUnavailableMessage = "I'm having trouble connecting right now. Please try again later or check out your progress analytics for insights!"

// fallbackMotivationalMessages stands in for the model-written message when
// the model is unavailable.
var fallbackMotivationalMessages = []string{
	"Keep pushing forward! Every workout brings you closer to your goals.",
	"Consistency is key! You're building great habits.",
	"Your dedication is inspiring. Stay strong!",
	"Progress isn't always visible, but it's happening. Keep going!",
	"You're stronger than you think. Keep up the amazing work!",
}

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string                 `json:"model"`
	Messages       []openAIMessage        `json:"messages"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat map[string]interface{} `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the raw content
// string from the first choice. Uses raw net/http to avoid pulling in the
// OpenAI SDK.
func (h *Handler) callOpenAI(systemPrompt, userPrompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := openAIRequest{
		Model: "gpt-4o-mini",
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
		ResponseFormat: map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", h.openAIBaseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

/* ─── Recommendation heuristics ──────────────────────────────────────── */

// hasGoal reports whether the profile lists a fitness goal, case-insensitively.
func hasGoal(p profile, goal string) bool {
	for _, g := range p.FitnessGoals {
		if strings.EqualFold(g, goal) {
			return true
		}
	}
	return false
}

// workoutAdvice builds workout recommendations from the 30-day aggregate and
// the profile's goals.
func workoutAdvice(p profile, workouts workoutAggregate) []string {
	advice := []string{}

	if workouts.WeeklyAverage < 3 {
		advice = append(advice, "Try to increase your workout frequency to 3-4 times per week for optimal results")
	}
	if workouts.TotalSessions > 0 && workouts.AverageDuration < 30 {
		advice = append(advice, "Consider extending your workouts to 30-45 minutes for better fitness gains")
	}

	if hasGoal(p, "weight_loss") {
		advice = append(advice, "Focus on high-intensity interval training (HIIT) to maximize calorie burn")
	}
	if hasGoal(p, "muscle_gain") {
		advice = append(advice, "Incorporate more strength training with progressive overload")
	}

	return advice
}

// nutritionAdvice compares the 30-day averages against the profile's targets.
// Calorie advice needs a computable TDEE; protein advice needs a weight.
func nutritionAdvice(p profile, nutrition nutritionAggregate) []string {
	advice := []string{}
	if nutrition.EntriesCount == 0 {
		return advice
	}

	age := ageYears(p.DateOfBirth, time.Now())
	if target := tdee(bmr(p.WeightKG, p.HeightCM, age, p.Sex), p.ActivityLevel); target != nil {
		switch {
		case nutrition.AverageCalories < *target*0.8:
			advice = append(advice, "You're eating below your target calories. Consider adding healthy snacks")
		case nutrition.AverageCalories > *target*1.2:
			advice = append(advice, "You're exceeding your calorie target. Focus on portion control")
		}
	}

	if p.WeightKG != nil && nutrition.AverageProtein < 1.2*(*p.WeightKG) {
		advice = append(advice, "Increase your protein intake to support your fitness goals")
	}

	return advice
}

// motivationalMessage asks the model for a short personal message, falling
// back to a random canned one.
func (h *Handler) motivationalMessage(p profile, analysis progressAnalysis) string {
	prompt := fmt.Sprintf(
		"Write a short motivational message (1-2 sentences) for someone with "+
			"fitness goals [%s] who completed %d workouts in the last 30 days. "+
			`Respond with JSON: {"message": "..."}`,
		strings.Join(p.FitnessGoals, ", "), analysis.WorkoutAnalysis.TotalSessions)

	content, err := h.callOpenAI(coachSystemPrompt, prompt)
	if err != nil {
		log.Printf("[coach] motivational message fallback: %v", err)
		return fallbackMotivationalMessages[rand.Intn(len(fallbackMotivationalMessages))]
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.Message == "" {
		return fallbackMotivationalMessages[rand.Intn(len(fallbackMotivationalMessages))]
	}
	return parsed.Message
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getCoachRecommendations returns heuristic workout and nutrition advice,
// goal adjustments, and a motivational message.
// GET /api/coach/recommendations.
func (h *Handler) getCoachRecommendations(c *gin.Context) {
	userID := c.GetInt("user_id")
	now := time.Now()

	p, sessions, entries, err := h.loadAnalysisWindow(c, userID, now)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	analysis := computeProgressAnalysis(p, sessions, entries, now)

	c.JSON(http.StatusOK, gin.H{
		"workout_recommendations":   workoutAdvice(p, analysis.WorkoutAnalysis),
		"nutrition_recommendations": nutritionAdvice(p, analysis.NutritionAnalysis),
		"motivational_message":      h.motivationalMessage(p, analysis),
		"goal_adjustments":          analysis.GoalAdjustments,
	})
}

// coachChat answers a free-form question with the caller's profile and
// 30-day progress as context. POST /api/coach/chat.
// Model failure degrades to a canned reply with a 200, never an error.
func (h *Handler) coachChat(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Message string `json:"message"`
	}
	if err := c.BindJSON(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		apiError(c, http.StatusBadRequest, "message is required")
		return
	}

	now := time.Now()
	p, sessions, entries, err := h.loadAnalysisWindow(c, userID, now)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	analysis := computeProgressAnalysis(p, sessions, entries, now)

	experience := ""
	if p.Experience != nil {
		experience = *p.Experience
	}
	prompt := fmt.Sprintf(
		"You are a personal fitness coach chatting with a user. User profile:\n"+
			"- Goals: %s\n"+
			"- Experience: %s\n"+
			"- Workouts in last 30 days: %d (weekly average %d)\n"+
			"- Average daily calories: %.0f\n\n"+
			"User message: %s\n\n"+
			"Reply in a supportive, practical tone. "+
			`Respond with JSON: {"reply": "..."}`,
		strings.Join(p.FitnessGoals, ", "), experience,
		analysis.WorkoutAnalysis.TotalSessions, analysis.WorkoutAnalysis.WeeklyAverage,
		analysis.NutritionAnalysis.AverageCalories,
		strings.TrimSpace(body.Message))

	reply := chatUnavailableMessage
	if content, err := h.callOpenAI(coachSystemPrompt, prompt); err != nil {
		log.Printf("[coach] chat fallback: %v", err)
	} else {
		var parsed struct {
			Reply string `json:"reply"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.Reply == "" {
			log.Printf("[coach] unusable chat response, using fallback")
		} else {
			reply = parsed.Reply
		}
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
