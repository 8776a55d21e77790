package controllers

import (
	"net/http"
	"time"

	"trackfit/config"
	"trackfit/models"
	"trackfit/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	RT *services.RealtimeHub
}

func NewFoodController(rt *services.RealtimeHub) *FoodController {
	return &FoodController{RT: rt}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, models.ApiResponse{Success: false, Message: message})
}

// GET /users/:userId/foods?start=&end=  or ?name=
func (fc *FoodController) ListFoods(c *gin.Context) {
	userID := c.GetUint("userID")

	q := config.DB.Where("user_id = ?", userID)

	if name := c.Query("name"); name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}

	startParam, endParam := c.Query("start"), c.Query("end")
	if startParam != "" && endParam != "" {
		start, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid start timestamp")
			return
		}
		end, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid end timestamp")
			return
		}
		// half-open range: [start, end)
		q = q.Where("date >= ? AND date < ?", start, end)
	}

	var foods []models.Food
	if err := q.Order("date DESC").Find(&foods).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.ApiResponse{Success: true, Data: foods})
}

// POST /users/:userId/foods
func (fc *FoodController) AddFood(c *gin.Context) {
	userID := c.GetUint("userID")

	var body struct {
		Name     string    `json:"name" binding:"required"`
		Calories int       `json:"calories"`
		Date     time.Time `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.Date.IsZero() {
		body.Date = time.Now()
	}

	food := models.Food{
		UserID:   userID,
		Name:     body.Name,
		Calories: body.Calories,
		Date:     body.Date,
	}
	if err := config.DB.Create(&food).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	fc.RT.BroadcastFoodEvent(userID, "food.created", food)
	c.JSON(http.StatusCreated, models.ApiResponse{Success: true, Data: food})
}

// PUT /users/:userId/foods/:foodId
func (fc *FoodController) UpdateFood(c *gin.Context) {
	userID := c.GetUint("userID")

	var body struct {
		Name     string    `json:"name"`
		Calories int       `json:"calories"`
		Date     time.Time `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var food models.Food
	if err := config.DB.Where("user_id = ?", userID).First(&food, "id = ?", c.Param("foodId")).Error; err != nil {
		fail(c, http.StatusNotFound, "food not found")
		return
	}

	if body.Name != "" {
		food.Name = body.Name
	}
	food.Calories = body.Calories
	if !body.Date.IsZero() {
		food.Date = body.Date
	}

	if err := config.DB.Save(&food).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	fc.RT.BroadcastFoodEvent(userID, "food.updated", food)
	c.JSON(http.StatusOK, models.ApiResponse{Success: true, Data: food})
}

// DELETE /users/:userId/foods  { "ids": [1,2,3] }
func (fc *FoodController) DeleteFoods(c *gin.Context) {
	userID := c.GetUint("userID")

	var body struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result := config.DB.Where("user_id = ? AND id IN ?", userID, body.IDs).Delete(&models.Food{})
	if result.Error != nil {
		fail(c, http.StatusInternalServerError, result.Error.Error())
		return
	}

	fc.RT.BroadcastFoodEvent(userID, "food.deleted", body.IDs)
	c.JSON(http.StatusOK, models.ApiResponse{Success: true, Message: "foods deleted"})
}
