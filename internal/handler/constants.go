// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration and redirects.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"

	// RouteCategories is the category index route.
	RouteCategories = "/categories"
	// RouteCategoryByID is the single category route pattern.
	RouteCategoryByID = "/categories/{id}"
	// RouteSearch is the search route.
	RouteSearch = "/search"
	// RouteExploreLatest is the latest recipes route.
	RouteExploreLatest = "/explore-latest"
	// RouteExploreRandom is the random recipe route.
	RouteExploreRandom = "/explore-random"

	// RouteRecipe is the recipe page route pattern.
	RouteRecipe = "/recipe/{id}"
	// RouteSubmitRecipe is the recipe submission route.
	RouteSubmitRecipe = "/submit-recipe"
	// RouteRecipeEdit is the recipe edit route pattern.
	RouteRecipeEdit = "/recipe/edit/{id}"
	// RouteRecipeDelete is the recipe delete route pattern.
	RouteRecipeDelete = "/recipe/delete/{id}"
	// RouteRecipeComment is the comment creation route pattern.
	RouteRecipeComment = "/recipe/{id}/comment"
	// RouteCommentDelete is the comment delete route pattern.
	RouteCommentDelete = "/recipe/{recipeID}/comment/delete/{commentID}"
	// RouteRecipeFavorite is the favorite-add route pattern.
	RouteRecipeFavorite = "/recipe/favorite/{id}"
	// RouteRecipeUnfavorite is the favorite-remove route pattern.
	RouteRecipeUnfavorite = "/recipe/unfavorite/{id}"
	// RouteFavorites is the favorites listing route.
	RouteFavorites = "/favorites"

	// RouteSignup is the signup route.
	RouteSignup = "/signup"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteAuthGoogle starts the Google sign-in flow.
	RouteAuthGoogle = "/auth/google"
	// RouteAuthGoogleCallback completes the Google sign-in flow.
	RouteAuthGoogleCallback = "/auth/google/callback"

	// RouteProfile is the profile route.
	RouteProfile = "/profile"
	// RouteEditProfile is the profile edit route.
	RouteEditProfile = "/edit-profile"
	// RouteChangePassword is the password change route.
	RouteChangePassword = "/change-password"
	// RouteMyRecipes lists the current user's recipes.
	RouteMyRecipes = "/my-recipes"

	// RouteAdminDashboard is the admin dashboard route.
	RouteAdminDashboard = "/admin/dashboard"
	// RouteAdminUserUpdate is the admin user update route pattern.
	RouteAdminUserUpdate = "/admin/user/edit-update/{id}"
	// RouteAdminUserDelete is the admin user delete route pattern.
	RouteAdminUserDelete = "/admin/user/delete/{id}"
)
